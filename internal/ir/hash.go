package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for digests. The version suffix allows the layout to change
// without colliding with digests recorded by older releases.
const (
	DomainResult   = "reelcheck/result/v" + DigestVersion
	DomainScenario = "reelcheck/scenario/v" + DigestVersion
)

// ResultRow is the part of a returned row that participates in a digest.
type ResultRow struct {
	ID       int64
	Identity string
}

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ResultDigest fingerprints an ordered result set. Two runs that return the
// same rows in the same order produce the same digest.
func ResultDigest(rows []ResultRow) (string, error) {
	arr := make(IRArray, len(rows))
	for i, r := range rows {
		arr[i] = IRArray{IRInt(r.ID), IRString(r.Identity)}
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("ResultDigest: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// ScenarioDigest fingerprints a scenario definition given as a canonical
// object, so baselines can tell a changed scenario from a changed catalog.
func ScenarioDigest(def IRObject) (string, error) {
	canonical, err := MarshalCanonical(def)
	if err != nil {
		return "", fmt.Errorf("ScenarioDigest: %w", err)
	}
	return hashWithDomain(DomainScenario, canonical), nil
}
