package tool

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"grantintel/pkg/core/utils"
	"grantintel/pkg/models"
)

// InvokeOptions controls a single Invoke call. BypassCache forces
// re-execution even when a fresh cached ToolResult exists for the computed
// fingerprint, for callers that need to force a refresh (e.g. a manual
// re-run from the triage queue).
type InvokeOptions struct {
	Version     string
	BypassCache bool
}

// Invoke resolves id+version, validates input against the declared input
// schema (repairing tolerably-malformed JSON first), checks the fingerprint
// cache, executes on a miss, validates the output schema, and writes the
// result back to the store. A schema violation after repair is reported as
// InvalidArguments per the declared contract.
func (r *Registry) Invoke(id string, input []byte, tc Context, opts InvokeOptions) ([]byte, error) {
	t, md, err := r.Resolve(id, opts.Version)
	if err != nil {
		return nil, err
	}

	canonical, err := r.validateAgainstSchema(md.InputSchema, input)
	if err != nil {
		return nil, models.NewError(models.KindInvalidArguments,
			fmt.Sprintf("input failed schema %q for tool %s", md.InputSchema, id), err)
	}

	fp := Fingerprint(id, md.Version, canonical)

	if !opts.BypassCache && tc.Store != nil {
		if cached, ok := tc.Store.GetToolResult(fp); ok && cached.Success {
			if md.CacheTTL <= 0 || time.Since(cached.ProducedAt) < md.CacheTTL {
				return cached.Payload, nil
			}
		}
	}

	if err := t.Validate(canonical); err != nil {
		return nil, models.NewError(models.KindInvalidArguments,
			fmt.Sprintf("tool %s rejected input", id), err)
	}

	start := time.Now()
	out, execErr := t.Execute(canonical, tc)
	latency := time.Since(start)

	result := models.ToolResult{
		Fingerprint: fp,
		ToolID:      id,
		ToolVersion: md.Version,
		ProducedAt:  start,
		Latency:     latency,
	}

	if execErr != nil {
		result.Success = false
		result.ErrorKind = models.KindOf(execErr)
		if tc.Store != nil {
			_ = tc.Store.PutToolResult(result)
		}
		return nil, execErr
	}

	if md.OutputSchema != "" {
		if _, err := r.validateAgainstSchema(md.OutputSchema, out); err != nil {
			return nil, models.NewError(models.KindInvalidArguments,
				fmt.Sprintf("output failed schema %q for tool %s", md.OutputSchema, id), err)
		}
	}

	result.Success = true
	result.Payload = out
	if tc.Store != nil {
		if err := tc.Store.PutToolResult(result); err != nil && tc.Logger != nil {
			tc.Logger("tool %s: failed to persist result: %v", id, err)
		}
	}

	return out, nil
}

// validateAgainstSchema decodes payload through the tolerant parse chain
// into the schema's target struct and returns the canonicalized JSON bytes.
// An empty schemaName enforces no schema: payload is only checked to be
// JSON and returned in canonical form (see canonicalizeJSON).
func (r *Registry) validateAgainstSchema(schemaName string, payload []byte) ([]byte, error) {
	if schemaName == "" {
		return canonicalizeJSON(payload)
	}

	r.mu.RLock()
	sv, ok := r.schemas[schemaName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown schema reference %q", schemaName)
	}

	target := sv()
	if _, err := utils.ValidateAndRepairJSON(string(payload), target); err != nil {
		return nil, err
	}

	canonical, err := json.Marshal(target)
	if err != nil {
		return nil, fmt.Errorf("re-marshal validated payload: %w", err)
	}
	return canonical, nil
}

// canonicalizeJSON normalizes object key order via a decode/re-encode round
// trip through a generic map, so two semantically identical payloads with
// different key ordering fingerprint identically.
func canonicalizeJSON(payload []byte) ([]byte, error) {
	var generic interface{}
	if err := json.Unmarshal(payload, &generic); err != nil {
		return nil, fmt.Errorf("JSON_STRUCTURAL_ERROR: %w", err)
	}
	return json.Marshal(generic)
}

// Fingerprint computes the deterministic cache key for a tool invocation:
// sha256 over identifier, version, and canonical input payload.
func Fingerprint(id, version string, canonicalInput []byte) models.Fingerprint {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write(canonicalInput)
	return models.Fingerprint(hex.EncodeToString(h.Sum(nil)))
}
