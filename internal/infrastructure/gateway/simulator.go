// Package gateway holds the stand-in mobile money provider used until a
// real provider integration exists.
package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sacco-ledger/internal/domain/mobilemoney"

	"github.com/google/uuid"
)

var _ mobilemoney.Gateway = (*Simulator)(nil)

// Simulator accepts every request and answers with a fresh reference.
// The outcome arrives later through the webhook.
type Simulator struct{}

func NewSimulator() *Simulator { return &Simulator{} }

func (s *Simulator) Initiate(ctx context.Context, req mobilemoney.GatewayRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !req.Provider.Valid() {
		return "", mobilemoney.ErrInvalidProvider
	}
	ref := fmt.Sprintf("%s-%s", strings.ToUpper(string(req.Provider)), uuid.NewString())
	log.Printf("gateway: %s %s %s to %s ref=%s", req.Provider, req.Direction, req.Amount.StringFixed(2), req.Phone, ref)
	return ref, nil
}
