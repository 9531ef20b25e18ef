// Package store provides persistent storage for the relay using SQLite.
//
// # Data Models
//
//   - User: a Telegram account and its position in the add-link dialog
//   - Chat: a group, supergroup or channel the bot administers
//   - Link: a chat-to-Wemessenger-contact association, created in two phases
//
// SQLiteStore implements the Store interface. All operations take a context
// and run as single statements (RemoveChat uses one transaction), giving
// per-entity atomicity without cross-entity coordination.
//
// Lookup misses are reported in-band: GetUserState returns StateUnknown for an
// unseen user, CreateLink and AttachDestinationContact return false when their
// target does not exist. Errors are reserved for storage failure.
package store
