// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package credentials loads the basic-auth accounts for the web form from a
// plain-text file. Each non-blank line is "user:password"; lines starting
// with '#' are comments.
package credentials

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads the accounts file at path and returns a map of user to
// password. An empty path or a missing file is not an error; Load returns an
// empty map and the web form runs without authentication.
func Load(path string) (map[string]string, error) {
	accounts := map[string]string{}
	if path == "" {
		return accounts, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return accounts, nil
		}
		return nil, fmt.Errorf("opening accounts file %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, pass, ok := strings.Cut(line, ":")
		user = strings.TrimSpace(user)
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("%s:%d: want user:password", path, n)
		}
		if _, dup := accounts[user]; dup {
			return nil, fmt.Errorf("%s:%d: duplicate user %q", path, n, user)
		}
		accounts[user] = pass
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading accounts file %s: %w", path, err)
	}
	return accounts, nil
}
