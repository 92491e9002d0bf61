package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"assistbot/internal/llm"
	"assistbot/internal/storage"
)

const (
	replyUnsupportedFile = "Sorry, I can only analyze images (jpg, jpeg, png) and PDF documents."

	// Sent to the engine in place of the document body when extraction
	// yields nothing, so the user still gets a meaningful reply.
	emptyDocumentMarker = "The document contains no extractable text."
)

// handleFile routes a file event to its type-specific pipeline and returns
// the reply text. Unsupported categories short-circuit: fixed reply, no
// external call, no record. Supported categories append a FileRecord only
// after a successful description.
func (b *Bot) handleFile(ctx context.Context, e *event, userID int64) string {
	ev := e.file
	if ev.category == fileUnsupported {
		return replyUnsupportedFile
	}

	data, err := b.files.Fetch(ctx, ev.fileID)
	if err != nil {
		log.Printf("failed to fetch file %q for user %d: %v", ev.name, userID, err)
		return replySomethingWrong
	}

	var description string
	switch ev.category {
	case fileImage:
		description, err = b.describeImage(ctx, ev.name, data)
	case filePDF:
		description, err = b.describePDF(ctx, ev.name, data)
	}
	if err != nil {
		log.Printf("failed to describe %s %q for user %d: %v", ev.category, ev.name, userID, err)
		return serviceApology(err)
	}

	rec := storage.FileRecord{
		UserID:      userID,
		FileName:    ev.name,
		Category:    storage.FileCategory(ev.category),
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
	if err := b.store.AppendFile(ctx, rec); err != nil {
		// The reply is already composed; losing the record is a logged gap.
		log.Printf("failed to append file record for user %d: %v", userID, err)
	}
	return description
}

func (b *Bot) describeImage(ctx context.Context, name string, data []byte) (string, error) {
	prompt := "Describe the content of this image."
	if vc, ok := b.llmClient.(llm.VisionClient); ok {
		resp, err := vc.DescribeImage(ctx, prompt, llm.Image{MIME: mimeForName(name), Data: data})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	}
	// Text-only providers get the file name, nothing better to offer.
	resp, err := b.llmClient.Complete(ctx, fmt.Sprintf("Describe the content of the file: %s", name))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (b *Bot) describePDF(ctx context.Context, name string, data []byte) (string, error) {
	text, err := b.extractor.ExtractText(data)
	if err != nil {
		return "", fmt.Errorf("extract %q: %w", name, err)
	}
	if strings.TrimSpace(text) == "" {
		text = emptyDocumentMarker
	}
	resp, err := b.llmClient.Complete(ctx, "Summarize this document:\n\n"+text)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
