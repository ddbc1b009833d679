// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import "context"

// confirmation holds a destructive operation until the user answers
// its question. Declining drops the operation without a request.
type confirmation struct {
	title    string
	question string
	run      func(ctx context.Context) error
}

func (confirmation confirmation) box(keys KeyMap) overlayBox {
	return overlayBox{
		Title:  confirmation.title,
		Body:   []string{confirmation.question},
		Footer: keys.Confirm.Help().Key + " yes  " + keys.Decline.Help().Key + " no",
	}
}
