// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime pushes queue and credit snapshots to websocket subscribers.

# Hub

The Hub keeps the latest snapshot per topic and sends it to every new
subscriber, then a fresh snapshot after each change:

	hub := realtime.NewHub(st)
	go hub.Run(ctx)
	hub.Prime(ctx)
	mux.HandleFunc("GET /ws/queue", hub.ServeWS(models.TopicQueue))

Messages are JSON-encoded models.Snapshot values. Slow subscribers whose
send buffer fills up are disconnected.

# Multiple instances

With PostgreSQL the store announces changes through PGNotifier (pg_notify
on the jukebox_changes channel) and a Listener built on pgx relays them to
the local Hub, so every instance sharing the database stays current.
*/
package realtime
