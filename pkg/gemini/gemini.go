package gemini

import (
	"context"
	"fmt"
	"io"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash-001"

type Client struct {
	client    *genai.Client
	modelName string
}

// Document is a provider-assigned handle for an uploaded file.
type Document struct {
	URI      string
	MIMEType string
}

func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	if modelName == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error while creating gemini client for model `%s`. %w", modelName, err)
	}

	return &Client{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete sends one system-instructed text completion and returns the raw
// generated text.
func (c *Client) Complete(ctx context.Context, systemPrompt string, userPrompt string, temperature float32) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(temperature)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", err
	}

	return firstText(resp)
}

// UploadDocument stores a document in the provider's file store and returns
// its handle for later completion requests.
func (c *Client) UploadDocument(ctx context.Context, r io.Reader, mimeType string) (Document, error) {
	file, err := c.client.UploadFile(ctx, "", r, &genai.UploadFileOptions{MIMEType: mimeType})
	if err != nil {
		return Document{}, err
	}

	return Document{URI: file.URI, MIMEType: file.MIMEType}, nil
}

// CompleteWithDocuments submits one completion request that references all
// given uploaded documents alongside the instruction.
func (c *Client) CompleteWithDocuments(ctx context.Context, instruction string, docs []Document) (string, error) {
	model := c.client.GenerativeModel(c.modelName)

	parts := make([]genai.Part, 0, len(docs)+1)
	for _, doc := range docs {
		parts = append(parts, genai.FileData{MIMEType: doc.MIMEType, URI: doc.URI})
	}
	parts = append(parts, genai.Text(instruction))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	return firstText(resp)
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}

	return nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}

	return string(text), nil
}
