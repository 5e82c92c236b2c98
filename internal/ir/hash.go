package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefix for content-addressed program identity.
// Version suffix enables future algorithm migration.
const DomainProgram = "sable/program/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash computes the content-addressed identity of a program.
// The hash is stable across processes given the same program, which makes
// it usable as the artifact-cache key: same IR in, same compiled bytes out.
func ProgramHash(p Program) string {
	return hashWithDomain(DomainProgram, MarshalCanonicalProgram(p))
}
