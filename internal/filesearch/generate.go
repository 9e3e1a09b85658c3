package filesearch

import (
	"context"
	"fmt"
	"net/http"
)

// Generate invokes the generation model with grounding restricted to the
// request's store names. Remote failures are returned verbatim to the caller;
// no retry is performed here.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body := map[string]interface{}{
		"contents": req.Contents,
	}
	if len(req.StoreNames) > 0 {
		body["tools"] = []map[string]interface{}{
			{
				"fileSearch": map[string]interface{}{
					"fileSearchStoreNames": req.StoreNames,
				},
			},
		}
	}

	url := c.cfg.BaseURL + "/models/" + c.cfg.Model + ":generateContent"
	var resp GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, fmt.Errorf("generate failed: %w", err)
	}
	return &resp, nil
}
