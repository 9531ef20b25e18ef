// Package config loads cobalt configuration from a YAML file or, when no
// file is given, from COBALT_* environment variables.
//
// YAML values may reference environment variables with ${VAR_NAME}, which are
// expanded before parsing. Durations are written as Go duration strings
// ("10s", "1h"). A minimal file:
//
//	telegram:
//	  token: "${TELEGRAM_TOKEN}"
//	wemessenger:
//	  bot_uid: "my-bot-uid"
//	database:
//	  path: "/var/lib/cobalt/cobalt.db"
//	server:
//	  http_addr: ":8080"
//	  public_url: "https://relay.example.org/"
//
// Everything outside telegram.token, wemessenger.bot_uid and database.path is
// optional and defaulted.
package config
