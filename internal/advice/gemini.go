package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/"
)

var (
	ErrMissingAPIKey = errors.New("gemini api key not configured")
	ErrEmptyResponse = errors.New("gemini returned no candidates")
)

type adviceResponse struct {
	Advice []string `json:"advice"`
}

// adviceConfig 要求模型返回 {"advice": ["..."]}
var adviceConfig = &genai.GenerateContentConfig{
	ResponseMIMEType: "application/json",
	ResponseSchema: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"advice": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "List of 3 advice strings",
			},
		},
	},
}

// GeminiProvider 通过 genai SDK 调用 Gemini generateContent
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	client *genai.Client
	mu     sync.Mutex
}

func NewGeminiProvider(apiKey, model, baseURL string, httpClient *http.Client) *GeminiProvider {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// genaiClient 首次调用时创建客户端，之后复用
func (p *GeminiProvider) genaiClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  p.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.baseURL},
	})
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *GeminiProvider) Advise(ctx context.Context, prompt string) ([]string, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := p.genaiClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), adviceConfig)
	if err != nil {
		return nil, fmt.Errorf("error generating content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	jsonText := strings.TrimSpace(resp.Text())
	if jsonText == "" {
		jsonText = `{"advice": []}`
	}

	var out adviceResponse
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return nil, fmt.Errorf("error parsing advice json: %w", err)
	}

	return out.Advice, nil
}
