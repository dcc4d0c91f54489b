package queues

import (
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/web3-authn/zk-email-verifier/pkg/logger"
	"github.com/web3-authn/zk-email-verifier/pkg/rabbitmq"
	"github.com/web3-authn/zk-email-verifier/pkg/utilities"
	"github.com/web3-authn/zk-email-verifier/src/proofs"
	"github.com/web3-authn/zk-email-verifier/src/types/domain"
	"github.com/web3-authn/zk-email-verifier/src/types/incoming"
)

const (
	VerifyRequestsConsumer rabbitmq.ConsumerAlias  = "recovery_verify_requests"
	VerifyResultsPublisher rabbitmq.PublisherAlias = "recovery_verify_results"
)

type VerificationResponse struct {
	RequestID        string  `json:"request_id"`
	Verified         bool    `json:"verified"`
	AccountID        string  `json:"account_id,omitempty"`
	NewPublicKey     string  `json:"new_public_key,omitempty"`
	FromAddress      string  `json:"from_address,omitempty"`
	EmailTimestampMs *uint64 `json:"email_timestamp_ms,omitempty"`
	Error            string  `json:"error,omitempty"`
}

func (vr VerificationResponse) Serialize() ([]byte, error) {
	return utilities.Serialize(vr)
}

// VerificationHandler consumes recovery verification requests and publishes
// one response per request, valid or not.
type VerificationHandler struct {
	verifier  *proofs.Verifier
	publisher rabbitmq.IRabbitmqPublisher
	log       *logger.Logger
}

func NewVerificationHandler(verifier *proofs.Verifier, publisher rabbitmq.IRabbitmqPublisher) *VerificationHandler {
	return &VerificationHandler{
		verifier:  verifier,
		publisher: publisher,
		log:       logger.Default(),
	}
}

func (h *VerificationHandler) Handle(d amqp.Delivery) {
	var req incoming.VerificationRequestDto
	if err := json.Unmarshal(d.Body, &req); err != nil {
		h.publish(VerificationResponse{
			RequestID: uuid.NewString(),
			Verified:  false,
			Error:     "unmarshal: " + err.Error(),
		})
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	var result domain.VerificationResult
	if req.Claim != nil {
		result = h.verifier.VerifyWithBinding(req.Proof, req.PublicInputs, *req.Claim)
	} else {
		result = h.verifier.Verify(req.Proof, req.PublicInputs)
	}

	h.log.Infof("Processed verification request %s: verified=%t", req.RequestID, result.Verified)
	h.publish(VerificationResponse{
		RequestID:        req.RequestID,
		Verified:         result.Verified,
		AccountID:        result.AccountID,
		NewPublicKey:     result.NewPublicKey,
		FromAddress:      result.FromAddress,
		EmailTimestampMs: result.EmailTimestampMs,
	})
}

func (h *VerificationHandler) publish(resp VerificationResponse) {
	if err := h.publisher.Publish(resp); err != nil {
		h.log.Errorf(err, "Failed to publish verification result for %s", resp.RequestID)
	}
}
