package vault

import "crypto/sha256"

// approvalPrefix domain-separates request approval digests from any
// other signed content.
const approvalPrefix = "warden/vault/approval"

// ApprovalDigest is the digest guardians sign to approve a request
// offline. The chain ID binds the signature to one engine and the
// request ID to one request, so a packed signature batch can never be
// replayed elsewhere.
func ApprovalDigest(chainID string, requestID []byte) []byte {
	h := sha256.New()
	h.Write([]byte(approvalPrefix))
	h.Write([]byte{0})
	h.Write([]byte(chainID))
	h.Write([]byte{0})
	h.Write(requestID)
	return h.Sum(nil)
}
