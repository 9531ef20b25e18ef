// Package relay contains the conversational core of cobalt.
//
// A classified telegram.Event enters through Service.HandleEvent and takes one
// of three paths:
//
//   - private chats drive the per-user add-link state machine
//     (start -> add_link -> add_link_destination_part -> start)
//   - membership changes register or remove the chat and its links
//   - group and channel messages fan out to every linked Wemessenger contact
//
// Reply texts live in a TOML catalog (embedded default, operator-overridable)
// so deployments can localize without rebuilding.
package relay
