/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package connector

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"wibeboard/internal/registry"
)

// PayloadKey is the drag-and-drop transfer key carrying a widget payload.
const PayloadKey = "application/x-wibeboard-widget"

// ErrMalformedPayload is returned for transfer data that is not valid JSON or
// does not match the payload schema.
var ErrMalformedPayload = errors.New("malformed widget payload")

//go:embed payload.schema.json
var payloadSchemaJSON []byte

var payloadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(payloadSchemaJSON))
})

// Payload is the widget dragged in from the picker sidebar.
type Payload struct {
	Type     string            `json:"type"`
	Template registry.Template `json:"template"`
}

// ParsePayload validates and decodes transfer data.
func ParsePayload(data string) (Payload, error) {
	schema, err := payloadSchema()
	if err != nil {
		return Payload{}, fmt.Errorf("compile payload schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewStringLoader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !res.Valid() {
		return Payload{}, fmt.Errorf("%w: %s", ErrMalformedPayload, res.Errors()[0])
	}
	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return p, nil
}

// EncodePayload is the inverse of ParsePayload; drag sources use it.
func EncodePayload(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}
