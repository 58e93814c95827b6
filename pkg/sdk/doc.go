// Package elodash embeds the elodash leaderboard pipeline in a Go program.
//
// Boards are declared with options and read from static JSON files, the KV
// worker or Redis/Valkey. Every read runs the same rank, filter and paginate
// pipeline as the HTTP API.
//
//	client, _ := elodash.New(ctx,
//	    elodash.WithWorker("https://kv.example.workers.dev"),
//	    elodash.WithBoard("leetcode", elodash.KindLeetCode, elodash.KVSource("leetcode:data")),
//	)
//	page, _ := client.Entries(ctx, elodash.Query{Board: "leetcode", Min: elodash.Bound(1600)})
//	for _, e := range page.Items {
//	    fmt.Println(e.Rank, e.Key, e.Numbers["elo"])
//	}
//
// Registrations are appended to the users list of the same KV backend:
//
//	user, err := client.Register(ctx, elodash.Registration{
//	    LeetCodeUsername: "alice",
//	    GitHubUsername:   "alice-gh",
//	})
//	if errors.Is(err, elodash.ErrAlreadyRegistered) { ... }
package elodash
