// rest.go implements the Hyperliquid /info and /exchange REST endpoints.
// Every mutating call is signed by handing the unsigned action payload to
// the out-of-process signer (internal/signer) rather than holding a
// private key here, per the engine's non-negotiable "signer outsourced to
// a subprocess" design. Client construction (resty, retry, rate limiting)
// is adapted from the teacher's exchange/client.go.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/go-resty/resty/v2"

	"github.com/latentspeed/execengine/internal/signer"
)

// hyperliquidSigningChainID is the fixed chain id Hyperliquid signs actions
// under, independent of which network (mainnet/testnet) the REST/WS
// endpoints point at.
const hyperliquidSigningChainID = 1337

// agentTypes is the EIP-712 type set for Hyperliquid's "Agent" action
// envelope: source distinguishes mainnet ("a") from testnet ("b") actions,
// connectionId is the keccak256 hash of the action being authorized.
var agentTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Agent": {
		{Name: "source", Type: "string"},
		{Name: "connectionId", Type: "bytes32"},
	},
}

type restClient struct {
	http        *resty.Client
	rl          *RateLimiter
	signerCli   *signer.Client
	userAddress string
	vaultAddr   string
	testnet     bool
}

func newRestClient(baseURL string, testnet bool, signerCli *signer.Client, userAddress string) *restClient {
	if baseURL == "" {
		if testnet {
			baseURL = "https://api.hyperliquid-testnet.xyz"
		} else {
			baseURL = "https://api.hyperliquid.xyz"
		}
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")

	return &restClient{
		http:        httpClient,
		rl:          NewRateLimiter(),
		signerCli:   signerCli,
		userAddress: userAddress,
		testnet:     testnet,
	}
}

func (c *restClient) info(ctx context.Context, body map[string]any, result any) error {
	if err := c.rl.Info.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post("/info")
	if err != nil {
		return fmt.Errorf("info request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("info request: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// exchangeResponse is Hyperliquid's generic /exchange envelope.
type exchangeResponse struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// sendAction hashes action into Hyperliquid's Agent envelope, hands the
// resulting EIP-712 typed data to the signer subprocess for hashing and
// signing, and posts the signed action to /exchange. This module never
// touches key material: it only computes the keccak256 connectionId that
// identifies which action is being authorized.
func (c *restClient) sendAction(ctx context.Context, action map[string]any) (*exchangeResponse, error) {
	if err := c.rl.Exchange.Wait(ctx); err != nil {
		return nil, err
	}

	nonce := time.Now().UnixMilli()
	actionBytes, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}
	connectionID := crypto.Keccak256(actionBytes, big.NewInt(nonce).Bytes())

	source := "a"
	if c.testnet {
		source = "b"
	}
	typedData := apitypes.TypedData{
		Types:       agentTypes,
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           (*ethmath.HexOrDecimal256)(big.NewInt(hyperliquidSigningChainID)),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": "0x" + common.Bytes2Hex(connectionID),
		},
	}
	payload, err := json.Marshal(typedData)
	if err != nil {
		return nil, fmt.Errorf("marshal typed data: %w", err)
	}

	signCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	signResp, err := c.signerCli.Sign(signCtx, signer.SignRequest{
		ReqID:       fmt.Sprintf("%s-%d", c.userAddress, nonce),
		Method:      "eip712",
		PayloadJSON: string(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("sign action: %w", err)
	}

	body := map[string]any{
		"action":    action,
		"nonce":     nonce,
		"signature": signResp.Signature,
	}
	if c.vaultAddr != "" {
		body["vaultAddress"] = c.vaultAddr
	}

	var envelope exchangeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		Post("/exchange")
	if err != nil {
		return nil, fmt.Errorf("exchange request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("exchange request: status %d: %s", resp.StatusCode(), resp.String())
	}
	if envelope.Status != "ok" {
		return &envelope, fmt.Errorf("exchange rejected: %s", string(envelope.Response))
	}
	return &envelope, nil
}
