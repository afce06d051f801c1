// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog is the picker's view of the song library.

The catalog is fetched once per session and filtered locally:

	v := catalog.NewView()
	if err := v.Load(ctx, apiClient); err != nil {
		return err
	}
	v.SetCategory("Baroque")
	v.SetSearch("bach")
	songs := v.Visible()

Search is a case-insensitive substring match on title or artist. Songs with
an empty category only show under "All".
*/
package catalog
