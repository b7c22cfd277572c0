// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package websocket pushes notifications to signed-in accounts in real time.

A Hub tracks the open connections of each account. The notification service
calls SendToUser after it stores a notification; the hub forwards the
message to every connection of that account. Accounts without an open
connection simply read their inbox later over the REST API.

# Protocol

Server to client:

	{"type": "notification", "data": {...models.Notification...}}
	{"type": "pong", "data": null}

Client to server:

	{"type": "ping"}

The server also sends WebSocket ping frames every 54 seconds and drops a
connection that has not answered within 60.

# Lifecycle

Run owns the client registry and must be running for Register,
Unregister and SendToUser to take effect. It is supervised in the
messaging layer and closes every connection when its context ends.

Built on github.com/gorilla/websocket.
*/
package websocket
