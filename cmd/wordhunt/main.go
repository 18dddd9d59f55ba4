// Copyright 2025 The WordHunt Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordhunt CLI and msgpack IPC server.

wordhunt discovers rare, brandable English words in two modes. Speed mode
generates candidates locally from syllable patterns, morphology and phonetic
rules, then validates and ranks them. Hyper mode crawls public word lists,
filters the lines against the request and ranks what is left. Both modes share
one session, so a word returned once is never returned again until the session
is reset or expires.

# Usage

Find words quickly with the local generators:

	wordhunt search --min-length 5 --max-length 8 --starts-with ka

Crawl the configured sources with stricter filters:

	wordhunt search -m hyper --rarity 0.6 --difficulty easy -n 50

Run both modes and merge the results:

	wordhunt both --filters brand.yaml -f json

Check candidate names, one shot or interactively:

	wordhunt validate kumquat voltrix
	wordhunt validate -i

Filter specs can be given as flags or as a YAML, JSON or TOML file:

	length: {min: 5, max: 9}
	pattern: {endsWith: ly}
	rarity: {min: 0.4, max: 0.9}
	pronunciation: {difficulty: easy}

# Configuration

The config file is created with defaults on first run, next to the other
wordhunt state in the user config directory:

	[server]
	rate_limit = 10
	rate_window = "1m0s"

	[search]
	mode = "speed"
	max_results = 100
	timeout = "2m0s"

	[session]
	backend = "file"   # memory, file or sqlite
	ttl = "24h0m0s"

	[[crawler.sources]]
	url = "https://raw.githubusercontent.com/dwyl/english-words/master/words_alpha.txt"
	type = "wordlist"
	priority = 1

A .env file in the working or config directory is loaded at startup, which is
where the optional AI advisor key lives.

# IPC Protocol

The serve command reads msgpack maps from stdin and writes msgpack maps to
stdout. A ready message is sent first:

	{"status": "ready"}

Search in one mode:

	{"id": "r1", "action": "search", "mode": "speed", "max": 20, "filters": {"length": {"min": 5, "max": 8}}}

Receive scored words with the plan that produced them:

	{"id": "r1", "status": "ok", "words": [{"w": "kestrel", "s": "generated", ...}], "plan": {...}, "c": 20, "t": 512}

Other actions are search_both, validate, feedback, stats, reset and health.
Errors carry a category and an HTTP-like code; rate limited clients also get
the seconds to wait:

	{"id": "r9", "status": "error", "category": "rate_limited", "code": 429, "error": "...", "retry_after": 30}
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/internal/cli"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordhunt"
)

// sigHandler cancels the returned context on the first signal so a running crawl can
// stop cleanly, and exits on the second.
func sigHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx, cancel
}

// main only hands the signal context to the command tree.
func main() {
	ctx, cancel := sigHandler()
	defer cancel()

	if err := cli.Execute(ctx, Version); err != nil {
		log.Error(err)
		cancel()
		os.Exit(1)
	}
}
