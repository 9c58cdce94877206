package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ChallengeMessage is one Sign-In With Neo signing challenge. It is built by
// the frontend, signed by the wallet, and reconstructed here by parsing the
// signed text. It is never persisted.
type ChallengeMessage struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        int
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
}

const titleSuffix = " wants you to sign in with your Neo account:"

var titlePattern = regexp.MustCompile(`^(.+) wants you to sign in with your Neo account:$`)

// Build renders the message into its canonical fixed-order text block:
// title line, address, blank, statement, blank, then the Key: value lines.
// Timestamps are rendered in RFC 3339 at second precision.
func (m *ChallengeMessage) Build() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n", m.Domain, titleSuffix)
	fmt.Fprintf(&b, "%s\n", m.Address)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", m.Statement)
	b.WriteString("\n")
	fmt.Fprintf(&b, "URI: %s\n", m.URI)
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", m.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", m.IssuedAt.UTC().Format(time.RFC3339))
	if m.ExpirationTime != nil {
		fmt.Fprintf(&b, "\nExpiration Time: %s", m.ExpirationTime.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// ParseChallengeMessage reconstructs a ChallengeMessage from its text form.
// The title line must match the canonical pattern; the address is read from
// line 1 and the statement from line 3. Remaining lines are scanned for
// recognized "Key: value" pairs, unrecognized keys are ignored. A non-numeric
// chain id or an unparseable timestamp is a hard ErrMalformedMessage.
func ParseChallengeMessage(text string) (*ChallengeMessage, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 10 {
		return nil, fmt.Errorf("%w: expected at least 10 lines, got %d", ErrMalformedMessage, len(lines))
	}

	match := titlePattern.FindStringSubmatch(lines[0])
	if match == nil {
		return nil, fmt.Errorf("%w: invalid title line", ErrMalformedMessage)
	}

	msg := &ChallengeMessage{
		Domain:    match[1],
		Address:   lines[1],
		Statement: lines[3],
	}

	for _, line := range lines[4:] {
		key, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		switch key {
		case "URI":
			msg.URI = value
		case "Version":
			msg.Version = value
		case "Chain ID":
			chainID, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: chain id %q is not numeric", ErrMalformedMessage, value)
			}
			msg.ChainID = chainID
		case "Nonce":
			msg.Nonce = value
		case "Issued At":
			issuedAt, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid issued-at timestamp %q", ErrMalformedMessage, value)
			}
			msg.IssuedAt = issuedAt
		case "Expiration Time":
			expiration, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid expiration timestamp %q", ErrMalformedMessage, value)
			}
			msg.ExpirationTime = &expiration
		}
	}

	return msg, nil
}

// Validate checks the message claims against the given clock. Empty
// expectedDomain or expectedNonce skips that check. Checks run in a fixed
// order so the first failure is deterministic: domain, nonce, expiration,
// issue time.
func (m *ChallengeMessage) Validate(now time.Time, expectedDomain, expectedNonce string) error {
	if expectedDomain != "" && m.Domain != expectedDomain {
		return ErrDomainMismatch
	}
	if expectedNonce != "" && m.Nonce != expectedNonce {
		return ErrNonceMismatch
	}
	if m.ExpirationTime != nil && m.ExpirationTime.Before(now) {
		return ErrMessageExpired
	}
	if m.IssuedAt.After(now) {
		return ErrIssuedInFuture
	}
	return nil
}
