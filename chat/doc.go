// Package chat contains the chat frame filter and the Twitch frame feed.
//
// It provides two entrypoints:
//   - Processor.Run: reads newline-delimited JSON chat frames, drops blank
//     lines, the keepalive sentinel, and anything that is not a JSON object,
//     optionally keeps only frames whose source matches a platform, and writes
//     each surviving frame as "[source] author: message".
//   - StartTwitchFeed: joins a Twitch channel over IRC and writes every chat
//     message as a JSON frame (plus periodic keepalives), producing exactly the
//     stream Processor consumes.
//
// Field lookup tolerates both lowercase and capitalized keys (source/Source,
// author/Author, message/Message). Non-string values are rendered as JSON text.
package chat
