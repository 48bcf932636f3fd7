// Package schemas embeds the JSON Schemas for structured API payloads.
package schemas

import (
	_ "embed"
)

// ReviewSnapshot is the schema for a structured candidate review.
//
//go:embed review_snapshot.schema.json
var ReviewSnapshot string
