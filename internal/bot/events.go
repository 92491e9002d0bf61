package bot

import (
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type eventKind int

const (
	eventText eventKind = iota
	eventCommand
	eventContact
	eventFile
)

type fileCategory string

const (
	fileImage       fileCategory = "image"
	filePDF         fileCategory = "pdf"
	fileUnsupported fileCategory = "unsupported"
)

// event is one classified unit of work derived from a raw inbound message.
type event struct {
	kind    eventKind
	command string
	args    []string
	phone   string
	text    string
	file    fileEvent
}

type fileEvent struct {
	name     string
	category fileCategory
	fileID   string
}

// classify maps a raw message into exactly one event variant. It is total:
// every message classifies, never an error. Priority: contact payloads win
// over commands, commands over attachments, attachments over plain text.
func classify(msg *tgbotapi.Message) event {
	if msg.Contact != nil {
		return event{kind: eventContact, phone: msg.Contact.PhoneNumber}
	}
	if msg.IsCommand() {
		return event{
			kind:    eventCommand,
			command: msg.Command(),
			args:    strings.Fields(msg.CommandArguments()),
		}
	}
	if msg.Document != nil {
		name := msg.Document.FileName
		return event{kind: eventFile, file: fileEvent{
			name:     name,
			category: categoryForName(name, false),
			fileID:   msg.Document.FileID,
		}}
	}
	if len(msg.Photo) > 0 {
		// Largest rendition is last.
		photo := msg.Photo[len(msg.Photo)-1]
		return event{kind: eventFile, file: fileEvent{
			name:     "photo.jpg",
			category: fileImage,
			fileID:   photo.FileID,
		}}
	}
	return event{kind: eventText, text: msg.Text}
}

// categoryForName derives the content category from the file extension.
// Extension-less names default to image only for photo-typed attachments.
func categoryForName(name string, isPhoto bool) fileCategory {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "jpg", "jpeg", "png":
		return fileImage
	case "pdf":
		return filePDF
	case "":
		if isPhoto {
			return fileImage
		}
		return fileUnsupported
	default:
		return fileUnsupported
	}
}

func mimeForName(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
