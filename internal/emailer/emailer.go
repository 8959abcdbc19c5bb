// Package emailer records queued alert emails for later delivery.
// Actual sending is handled by downstream infrastructure; the scraper
// only constructs messages and writes them to a well-known file.
package emailer

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mozdata/probescraper/schema"
)

// recordedEmail is the serialized form of one queued message.
type recordedEmail struct {
	Key   string       `yaml:"key"`
	Email schema.Email `yaml:"email"`
}

// Emailer accumulates alert emails keyed by a stable identifier so a
// rerun replaces rather than duplicates an alert.
type Emailer struct {
	path   string
	dryRun bool
	emails map[string]schema.Email
}

// New creates an emailer that records to the given file. With dryRun
// set, Flush prints the queued messages instead of writing them.
func New(path string, dryRun bool) *Emailer {
	return &Emailer{
		path:   path,
		dryRun: dryRun,
		emails: make(map[string]schema.Email),
	}
}

// Emails exposes the pending message map for the check functions to
// fill in.
func (e *Emailer) Emails() map[string]schema.Email {
	return e.emails
}

// Add queues one message under the given key, replacing any earlier
// message with the same key.
func (e *Emailer) Add(key string, email schema.Email) {
	e.emails[key] = email
}

// Flush writes the queued messages to the email file, sorted by key for
// reproducible output. An empty queue removes nothing and writes nothing.
func (e *Emailer) Flush() error {
	if len(e.emails) == 0 {
		return nil
	}

	records := make([]recordedEmail, 0, len(e.emails))
	for key, email := range e.emails {
		records = append(records, recordedEmail{Key: key, Email: email})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })

	if e.dryRun {
		for _, r := range records {
			fmt.Fprintf(os.Stderr, "Would email %v: %s\n", r.Email.Recipients, r.Email.Subject)
		}
		return nil
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("cannot serialize emails: %w", err)
	}
	if err := os.WriteFile(e.path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write email file %s: %w", e.path, err)
	}
	return nil
}

// Load reads back a previously recorded email file.
func Load(path string) (map[string]schema.Email, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read email file: %w", err)
	}
	var records []recordedEmail
	if err := yaml.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("malformed email file %s: %w", path, err)
	}
	emails := make(map[string]schema.Email, len(records))
	for _, r := range records {
		emails[r.Key] = r.Email
	}
	return emails, nil
}
