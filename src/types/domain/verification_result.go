package domain

// VerificationResult is the structured outcome of a proof check. On failure
// Verified is false; in binding mode the claimed fields are echoed back so
// the caller can log what was checked.
type VerificationResult struct {
	Verified         bool    `json:"verified"`
	AccountID        string  `json:"account_id"`
	NewPublicKey     string  `json:"new_public_key"`
	FromAddress      string  `json:"from_address"`
	EmailTimestampMs *uint64 `json:"email_timestamp_ms,omitempty"`
}
