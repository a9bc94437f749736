//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/greenthumb/nursery-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type plantPayload struct {
	PlantID  string `json:"plantId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestGardenPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	requestPlant := plantPayload{
		PlantID:  pacttest.ExistingPlantID,
		Name:     "Pact Peace Lily",
		Type:     "Houseplant",
		Price:    "18.5",
		Quantity: 7,
	}
	plantBodyMatcher := matchers.Map{
		"plantId":  matchers.Like(requestPlant.PlantID),
		"name":     matchers.Like(requestPlant.Name),
		"type":     matchers.Like(requestPlant.Type),
		"price":    matchers.Regex(requestPlant.Price, `^\d+(\.\d+)?$`),
		"quantity": matchers.Like(requestPlant.Quantity),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to add a plant").
		WithRequest("POST", "/v1/plants", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(plantBodyMatcher)
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(plantBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StatePlantExists).
		UponReceiving("a request to fetch an existing plant").
		WithRequest("GET", "/v1/plants/"+pacttest.ExistingPlantID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(plantBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StatePlantMissing).
		UponReceiving("a request for a missing plant").
		WithRequest("GET", "/v1/plants/"+pacttest.MissingPlantID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPlantClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreatePlant(ctx, requestPlant)
		if err != nil {
			return fmt.Errorf("create plant: %w", err)
		}
		if created == nil || created.PlantID == "" {
			return fmt.Errorf("expected created plant ID to be set")
		}

		fetched, err := client.GetPlant(ctx, pacttest.ExistingPlantID)
		if err != nil {
			return fmt.Errorf("get plant: %w", err)
		}
		if fetched == nil || fetched.PlantID != pacttest.ExistingPlantID {
			return fmt.Errorf("expected plant id %s, got %+v", pacttest.ExistingPlantID, fetched)
		}

		if _, err := client.GetPlant(ctx, pacttest.MissingPlantID); err == nil {
			return fmt.Errorf("expected 404 for plant %s", pacttest.MissingPlantID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		return nil
	})
	require.NoError(t, err)
}

type plantClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPlantClient(config pactconsumer.MockServerConfig) *plantClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &plantClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *plantClient) CreatePlant(ctx context.Context, plant plantPayload) (*plantPayload, error) {
	body, err := json.Marshal(plant)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/plants", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload plantPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *plantClient) GetPlant(ctx context.Context, id string) (*plantPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/plants/"+id, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload plantPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
