// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the terminals' connection to the jukebox API.

	c, err := client.New("http://localhost:3318")
	songs, err := c.Library(ctx)

	admin := c.WithAdminPassword(password)
	err = admin.Next(ctx)

Client satisfies the collaborator interfaces of the terminal packages:
catalog.Fetcher, credits.Writer, queue.Commands, device.Verifier,
reconcile.SessionCreator, reconcile.Submitter and picker.KioskSubmitter.

# Realtime

Subscribe opens a websocket (github.com/gorilla/websocket) on /ws/{topic}
and delivers the current snapshot followed by one per change:

	sub, err := c.Subscribe(ctx, models.TopicQueue, func(s models.Snapshot) {
		view.Apply(s.Requests)
	})
	defer sub.Close()

Non-2xx answers come back as *APIError; IsStatus checks the code.
*/
package client
