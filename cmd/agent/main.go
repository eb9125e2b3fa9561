package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
)

type Entry struct {
	Action   string         `json:"action"`
	Actor    string         `json:"actor"`
	Resource string         `json:"resource,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

func main() {
	api := flag.String("api", "http://localhost:8080", "collector base URL")
	token := flag.String("token", "", "bearer token (optional)")
	actor := flag.String("actor", "", "actor (defaults to $USER)")
	action := flag.String("action", "", "action, e.g. auth.login (if empty, read JSONL from stdin)")
	resource := flag.String("resource", "", "affected resource (optional)")
	flag.Parse()

	if *actor == "" {
		*actor = os.Getenv("USER")
	}

	send := func(e Entry) {
		buf, _ := json.Marshal(e)
		req, _ := http.NewRequest("POST", *api+"/v1/audit", bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintln(os.Stderr, "send error:", err)
			return
		}
		if resp.StatusCode >= 300 {
			fmt.Fprintln(os.Stderr, "rejected:", resp.Status)
		}
		resp.Body.Close()
	}

	if *action != "" {
		send(Entry{Action: *action, Actor: *actor, Resource: *resource})
		return
	}

	// modo stdin: uma entrada JSON por linha
	st, _ := os.Stdin.Stat()
	if (st.Mode() & os.ModeCharDevice) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: agent -action auth.login -resource session  OR  cat entries.jsonl | agent")
		return
	}
	s := bufio.NewScanner(os.Stdin)
	for s.Scan() {
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			fmt.Fprintln(os.Stderr, "skip invalid line:", err)
			continue
		}
		if e.Actor == "" {
			e.Actor = *actor
		}
		send(e)
	}
}
