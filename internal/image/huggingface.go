package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const DefaultEndpoint = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"

type HuggingFaceGenerator struct {
	Client   *http.Client
	Endpoint string
	Key      string
}

func NewHuggingFaceGenerator(i *do.Injector) (Generator, error) {
	key := do.MustInvokeNamed[string](i, "api_key")
	if key == "" {
		return nil, ErrMissingKey
	}
	return &HuggingFaceGenerator{
		Client:   do.MustInvoke[*http.Client](i),
		Endpoint: do.MustInvokeNamed[string](i, "endpoint"),
		Key:      key,
	}, nil
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// message flattens the error field. Validation failures arrive as a list of
// strings, anything else that is not a string is kept as raw JSON.
func (b errorBody) message() string {
	if len(b.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Error, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(b.Error, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(b.Error)
}

func (g *HuggingFaceGenerator) Generate(ctx context.Context, params Params) (Image, error) {
	if g.Key == "" {
		return Image{}, ErrMissingKey
	}
	endpoint := lo.Ternary(g.Endpoint != "", g.Endpoint, DefaultEndpoint)
	log := log.FromContextOrDiscard(ctx).WithGroup("huggingface").With("endpoint", endpoint)
	log.Info("requesting image")

	body, err := json.Marshal(params)
	if err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.Key)

	client := lo.Ternary(g.Client != nil, g.Client, http.DefaultClient)
	resp, err := client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// an unreadable or non-JSON body leaves eb empty
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.message()
		log.Warn("inference api returned an error", "status", resp.StatusCode, "error", msg)
		return Image{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, fmt.Errorf("reading image: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	log.Info("received image", "bytes", len(data), "content-type", contentType)

	return Image{Data: data, ContentType: contentType}, nil
}
