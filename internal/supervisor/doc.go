// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package supervisor runs the long-lived services of the records server under
a suture v4 supervisor tree.

The tree has three layers so a failure in one does not take down the
others:

	schoolbook
	├── data-layer
	│   └── store-gc            (BadgerDB only)
	├── messaging-layer
	│   ├── websocket-hub
	│   ├── change-feed
	│   └── sync-pusher
	└── api-layer
	    └── http-server

Every component already implements suture.Service, except the HTTP server
which is wrapped by services.HTTPServerService.

# Usage

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.Install(supervisor.Services{
	    StoreGC:    store.NewGCService(bs, cfg.Store.GCInterval),
	    Hub:        hub,
	    ChangeFeed: feed,
	    Pusher:     engine.Pusher(),
	    HTTP:       services.NewHTTPServerService(server, 10*time.Second),
	})
	errCh := tree.ServeBackground(ctx)

Supervisor events (service start, failure, backoff) are logged through the
sutureslog hook, which the logging package bridges onto zerolog.
*/
package supervisor
