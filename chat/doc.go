// Package chat records recent Twitch chat lines for the site's chat ticker.
//
// StartRecorder joins the configured channel's chat anonymously (no bot
// account or OAuth token needed; reading public chat requires none) and
// persists each line into the chat_messages table. A retention pass keeps the
// table bounded to the most recent rows so the ticker never grows without
// limit.
package chat
