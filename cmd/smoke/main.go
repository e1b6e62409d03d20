// Command smoke walks the register/login/note lifecycle against a running API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

type client struct {
	baseURL string
	http    *http.Client
	token   string
}

func (c *client) send(method, path string, body interface{}) (int, map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, out, nil
}

type step struct {
	name   string
	method string
	path   func() string
	body   interface{}
	check  func(status int, body map[string]interface{}) error
}

func expectStatus(want int) func(int, map[string]interface{}) error {
	return func(status int, body map[string]interface{}) error {
		if status != want {
			return fmt.Errorf("status %d, want %d (message: %v)", status, want, body["message"])
		}
		return nil
	}
}

func main() {
	baseURL := flag.String("base-url", envOr("SMOKE_BASE_URL", "http://localhost:8000"), "API base URL")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	email := fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())
	var noteID string

	steps := []step{
		{"register", http.MethodPost, static("/create-user"),
			map[string]string{"email": email, "fullName": "Smoke Test", "password": "secret1"},
			expectStatus(http.StatusOK)},
		{"register duplicate", http.MethodPost, static("/create-user"),
			map[string]string{"email": email, "fullName": "Smoke Test", "password": "secret1"},
			expectStatus(http.StatusBadRequest)},
		{"login", http.MethodPost, static("/login"),
			map[string]string{"email": email, "password": "secret1"},
			func(status int, body map[string]interface{}) error {
				if err := expectStatus(http.StatusOK)(status, body); err != nil {
					return err
				}
				token, _ := body["accessToken"].(string)
				if token == "" {
					return fmt.Errorf("no accessToken in response")
				}
				c.token = token
				return nil
			}},
		{"profile", http.MethodGet, static("/get-user"), nil, expectStatus(http.StatusOK)},
		{"add note", http.MethodPost, static("/add-note"),
			map[string]string{"title": "T", "content": "C"},
			func(status int, body map[string]interface{}) error {
				if err := expectStatus(http.StatusOK)(status, body); err != nil {
					return err
				}
				note, _ := body["note"].(map[string]interface{})
				noteID, _ = note["id"].(string)
				if noteID == "" {
					return fmt.Errorf("no note id in response")
				}
				if pinned, _ := note["isPinned"].(bool); pinned {
					return fmt.Errorf("new note is pinned")
				}
				return nil
			}},
		{"toggle pin", http.MethodPut, func() string { return "/isPinned/" + noteID }, nil,
			func(status int, body map[string]interface{}) error {
				if err := expectStatus(http.StatusOK)(status, body); err != nil {
					return err
				}
				note, _ := body["note"].(map[string]interface{})
				if pinned, _ := note["isPinned"].(bool); !pinned {
					return fmt.Errorf("note not pinned after toggle")
				}
				return nil
			}},
		{"list notes", http.MethodGet, static("/fetch-all-notes"), nil, expectNotes(1)},
		{"delete note", http.MethodDelete, func() string { return "/delete-note/" + noteID }, nil, expectStatus(http.StatusOK)},
		{"delete again", http.MethodDelete, func() string { return "/delete-note/" + noteID }, nil, expectStatus(http.StatusOK)},
		{"list after delete", http.MethodGet, static("/fetch-all-notes"), nil, expectNotes(0)},
	}

	color.Cyan("Smoke testing %s\n", *baseURL)
	for i, s := range steps {
		status, body, err := c.send(s.method, s.path(), s.body)
		if err == nil {
			err = s.check(status, body)
		}
		if err != nil {
			color.Red("[FAIL] %d. %s: %v", i+1, s.name, err)
			os.Exit(1)
		}
		color.Green("[PASS] %d. %s", i+1, s.name)
	}
	color.Cyan("All %d steps passed", len(steps))
}

func expectNotes(n int) func(int, map[string]interface{}) error {
	return func(status int, body map[string]interface{}) error {
		if err := expectStatus(http.StatusOK)(status, body); err != nil {
			return err
		}
		notes, ok := body["notes"].([]interface{})
		if !ok {
			return fmt.Errorf("notes is not a list")
		}
		if len(notes) != n {
			return fmt.Errorf("got %d notes, want %d", len(notes), n)
		}
		return nil
	}
}

func static(path string) func() string {
	return func() string { return path }
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
