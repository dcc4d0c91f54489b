package domain

// BindingClaim is the plaintext a relying party supplies at verification
// time. It is never trusted until every field matches the proof's public
// inputs.
type BindingClaim struct {
	AccountID    string `json:"account_id"`
	NewPublicKey string `json:"new_public_key"`
	FromEmail    string `json:"from_email"`
	Timestamp    string `json:"timestamp"`
}
