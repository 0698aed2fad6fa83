// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ampsave

import "github.com/pion/ampsave/harness"

// Archive is a batch of saved results written by a single client.
type Archive struct {
	Schema      int              `json:"schema"`
	GeneratedAt string           `json:"generatedAt,omitempty"`
	Client      Client           `json:"client"`
	Records     []harness.Record `json:"records"`
}

type Client struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}
