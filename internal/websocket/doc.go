// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package websocket fans record-change notifications out to connected views.

The Hub is the destination of the events.ChangeFeed: every committed
mutation or pull becomes one data_changed message carrying the change time
and sequence number. Messages carry no record data; a view reloads the
collections it displays when it receives one.

	hub := websocket.NewHub()
	feed := events.NewChangeFeed(hub.DataChanged, 64)
	feed.Attach(repos.Bus())
	tree.AddMessagingService(hub)
	tree.AddMessagingService(feed)

Message types:

  - data_changed: {"type":"data_changed","data":{"at":"...","sequence":7}}
  - sync_completed: a manual push or pull finished (direction, collections, error)
  - ping / pong: application-level keepalive initiated by the view

Each Client runs a read goroutine (answers pings, detects disconnects) and
a write goroutine (drains the send buffer, sends protocol pings). A client
whose send buffer is full when a broadcast arrives is dropped; it
reconnects and reloads.

Hub.Serve implements suture.Service and closes all clients when its
context is canceled.
*/
package websocket
