// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sealtrail/sealtrail/lib/binhash"
	"github.com/sealtrail/sealtrail/lib/protocol"
)

// ErrBroken is matched by every *BreakError.
var ErrBroken = errors.New("chain broken")

// BreakError reports a chain link that does not match the previous
// signature from the same sender.
type BreakError struct {
	// Index is the position of the offending message in the sequence.
	Index  int
	Sender uuid.UUID

	// Previous is the index of the sender's prior message.
	Previous int
}

func (e *BreakError) Error() string {
	return fmt.Sprintf("chain broken at message %d: sender %s link does not match signature of message %d",
		e.Index, e.Sender, e.Previous)
}

// Is reports whether target is ErrBroken.
func (e *BreakError) Is(target error) bool {
	return target == ErrBroken
}

// LinkStatus classifies a message's place in its sender's chain.
type LinkStatus string

const (
	// StatusStart is a SIGNED message, or a CHAINED message that is
	// the first seen from its sender.
	StatusStart LinkStatus = "start"

	// StatusLinked is a CHAINED message whose link matches the
	// previous signature.
	StatusLinked LinkStatus = "linked"
)

// Link is one message's entry in a Report.
type Link struct {
	Index       int          `json:"index"`
	Sender      uuid.UUID    `json:"sender"`
	Kind        string       `json:"kind"`
	Status      LinkStatus   `json:"status"`
	Fingerprint binhash.Hash `json:"-"`
	Digest      string       `json:"fingerprint"`
}

// Report summarizes a verified sequence.
type Report struct {
	Links []Link `json:"links"`

	// Senders maps each sender to the number of messages it sent.
	Senders map[uuid.UUID]int `json:"senders"`
}

// Verify checks the chain links of messages in order. It stops at the
// first broken link and returns the report built so far together with
// a *BreakError.
func Verify(messages []*protocol.ProtocolMessage) (Report, error) {
	report := Report{
		Links:   make([]Link, 0, len(messages)),
		Senders: make(map[uuid.UUID]int),
	}

	type previous struct {
		index     int
		signature []byte
	}
	last := make(map[uuid.UUID]previous)

	for index, msg := range messages {
		fingerprint := binhash.Fingerprint(msg.SignedData)
		link := Link{
			Index:       index,
			Sender:      msg.SenderID,
			Kind:        msg.Kind().String(),
			Status:      StatusStart,
			Fingerprint: fingerprint,
			Digest:      fingerprint.String(),
		}

		if msg.HasChainLink() {
			if prior, seen := last[msg.SenderID]; seen {
				if !bytes.Equal(msg.ChainLink, prior.signature) {
					return report, &BreakError{Index: index, Sender: msg.SenderID, Previous: prior.index}
				}
				link.Status = StatusLinked
			}
		}

		last[msg.SenderID] = previous{index: index, signature: msg.Signature}
		report.Links = append(report.Links, link)
		report.Senders[msg.SenderID]++
	}
	return report, nil
}
