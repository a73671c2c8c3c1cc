// Package evolution fala com a Evolution API, o gateway HTTP que mantém as
// sessões WhatsApp. Cada método faz exatamente uma chamada, sem retentativas.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var ErrMissingConfig = errors.New("evolution api url or api key not configured")

// DefaultWebhookEvents são os eventos assinados quando o pedido não informa nenhum.
var DefaultWebhookEvents = []string{"MESSAGES_UPSERT", "CONNECTION_UPDATE", "QRCODE_UPDATED"}

// UpstreamError é devolvido quando o gateway responde fora da faixa 2xx.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.Status)
	}
	return fmt.Sprintf("evolution api returned %d: %s", e.Status, body)
}

type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil, ErrMissingConfig
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}, nil
}

func (c *Client) request(ctx context.Context, instance string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if instance != "" {
		req.SetPathParam("instance", instance)
	}
	return req
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("evolution api request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return &UpstreamError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// ConnectionState consulta GET /instance/connectionState/{instance}.
func (c *Client) ConnectionState(ctx context.Context, instance string) (*ConnectionStateResponse, error) {
	var out ConnectionStateResponse
	resp, err := c.request(ctx, instance).
		SetResult(&out).
		Get("/instance/connectionState/{instance}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckIsWhatsApp consulta POST /chat/checkIsWhatsapp/{instance}.
func (c *Client) CheckIsWhatsApp(ctx context.Context, instance string, numbers []string) ([]NumberResult, error) {
	var out []NumberResult
	resp, err := c.request(ctx, instance).
		SetBody(map[string]interface{}{"numbers": numbers}).
		SetResult(&out).
		Post("/chat/checkIsWhatsapp/{instance}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteInstance chama DELETE /instance/delete/{instance}.
func (c *Client) DeleteInstance(ctx context.Context, instance string) error {
	resp, err := c.request(ctx, instance).Delete("/instance/delete/{instance}")
	return check(resp, err)
}

// CreateInstance chama POST /instance/create pedindo o QR code na resposta.
func (c *Client) CreateInstance(ctx context.Context, instance string) (*CreateInstanceResponse, error) {
	var out CreateInstanceResponse
	resp, err := c.request(ctx, "").
		SetBody(CreateInstanceRequest{
			InstanceName: instance,
			QRCode:       true,
			Integration:  "WHATSAPP-BAILEYS",
		}).
		SetResult(&out).
		Post("/instance/create")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendText chama POST /message/sendText/{instance}.
func (c *Client) SendText(ctx context.Context, instance, number, text string) (*SendMessageResponse, error) {
	var out SendMessageResponse
	resp, err := c.request(ctx, instance).
		SetBody(SendTextRequest{Number: number, Text: text}).
		SetResult(&out).
		Post("/message/sendText/{instance}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMedia chama POST /message/sendMedia/{instance} com a mídia por URL.
func (c *Client) SendMedia(ctx context.Context, instance string, media SendMediaRequest) (*SendMessageResponse, error) {
	var out SendMessageResponse
	resp, err := c.request(ctx, instance).
		SetBody(media).
		SetResult(&out).
		Post("/message/sendMedia/{instance}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetWebhook chama POST /webhook/set/{instance}; headers voltam em cada evento entregue.
func (c *Client) SetWebhook(ctx context.Context, instance, url string, events []string, headers map[string]string) (*WebhookResponse, error) {
	if len(events) == 0 {
		events = DefaultWebhookEvents
	}
	var out WebhookResponse
	resp, err := c.request(ctx, instance).
		SetBody(SetWebhookRequest{Webhook: WebhookSettings{
			Enabled:  true,
			URL:      url,
			ByEvents: false,
			Base64:   false,
			Events:   events,
			Headers:  headers,
		}}).
		SetResult(&out).
		Post("/webhook/set/{instance}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindContacts consulta GET /chat/findContacts/{instance} e devolve a lista crua.
func (c *Client) FindContacts(ctx context.Context, instance string) ([]RawContact, error) {
	var out []RawContact
	resp, err := c.request(ctx, instance).
		SetResult(&out).
		Get("/chat/findContacts/{instance}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}
