package onepay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://bcel.la:8083/onepay"

var ErrTransactionNotFound = errors.New("onepay: transaction not found")

// Client queries the BCEL OnePay gateway and builds payment QR payloads.
type Client struct {
	httpClient *http.Client
	baseURL    string
	mcid       string
}

func NewClient(httpClient *http.Client, baseURL, mcid string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		mcid:       mcid,
	}
}

// MerchantID returns the configured merchant id.
func (c *Client) MerchantID() string { return c.mcid }

// Transaction is the gateway view of a paid QR.
type Transaction struct {
	Ticket string          `json:"ticket"`
	Amount json.Number     `json:"amount"`
	Raw    json.RawMessage `json:"-"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Transaction(a)
	t.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// GetTransaction looks a payment up by its transaction uuid. A payment
// without a ticket has not been completed.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (Transaction, error) {
	q := url.Values{}
	q.Set("mcid", c.mcid)
	q.Set("uuid", transactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/gettransaction.php?"+q.Encode(), nil)
	if err != nil {
		return Transaction{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transaction{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Transaction{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return Transaction{}, ErrTransactionNotFound
	}
	if resp.StatusCode >= 300 {
		return Transaction{}, fmt.Errorf("onepay: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return Transaction{}, fmt.Errorf("onepay: decode transaction: %w", err)
	}
	if tx.Ticket == "" {
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}
