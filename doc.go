// Package uniws lets application code issue WebSocket upgrades through one
// API regardless of which transport completion model is active underneath.
//
// Direct transports return a connected socket synchronously from the
// upgrade call. Deferred transports return only accept/reject and deliver
// the actual socket later through named hooks dispatched by a shared
// connection multiplexer. uniws bridges the two: Upgrade always returns a
// usable Socket immediately, operations issued before the underlying
// connection exists are queued and replayed in order once it does, and
// concurrent in-flight upgrades are matched to their connections without
// loss or misrouting.
package uniws
