package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func commandMessage(text string) *tgbotapi.Message {
	length := len(text)
	if i := indexOfSpace(text); i > 0 {
		length = i
	}
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
	}
}

func indexOfSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}

func TestClassify_ContactWinsOverEverything(t *testing.T) {
	msg := commandMessage("/start")
	msg.Contact = &tgbotapi.Contact{PhoneNumber: "+15551234"}

	ev := classify(msg)
	if ev.kind != eventContact {
		t.Fatalf("expected contact event, got %v", ev.kind)
	}
	if ev.phone != "+15551234" {
		t.Fatalf("unexpected phone: %q", ev.phone)
	}
}

func TestClassify_CommandWithArgs(t *testing.T) {
	ev := classify(commandMessage("/websearch cats and dogs"))
	if ev.kind != eventCommand {
		t.Fatalf("expected command event, got %v", ev.kind)
	}
	if ev.command != "websearch" {
		t.Fatalf("unexpected command: %q", ev.command)
	}
	if len(ev.args) != 3 || ev.args[0] != "cats" || ev.args[2] != "dogs" {
		t.Fatalf("unexpected args: %v", ev.args)
	}
}

func TestClassify_Document(t *testing.T) {
	tests := []struct {
		name string
		want fileCategory
	}{
		{"report.pdf", filePDF},
		{"REPORT.PDF", filePDF},
		{"picture.jpg", fileImage},
		{"picture.JPEG", fileImage},
		{"diagram.png", fileImage},
		{"archive.zip", fileUnsupported},
		{"notes.txt", fileUnsupported},
		{"noextension", fileUnsupported},
	}
	for _, tc := range tests {
		msg := &tgbotapi.Message{Document: &tgbotapi.Document{FileName: tc.name, FileID: "f1"}}
		ev := classify(msg)
		if ev.kind != eventFile {
			t.Fatalf("%s: expected file event, got %v", tc.name, ev.kind)
		}
		if ev.file.category != tc.want {
			t.Errorf("%s: category = %q, want %q", tc.name, ev.file.category, tc.want)
		}
	}
}

func TestClassify_PhotoDefaultsToImage(t *testing.T) {
	msg := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
		{FileID: "small"},
		{FileID: "large"},
	}}
	ev := classify(msg)
	if ev.kind != eventFile {
		t.Fatalf("expected file event, got %v", ev.kind)
	}
	if ev.file.category != fileImage {
		t.Fatalf("photo should classify as image, got %q", ev.file.category)
	}
	if ev.file.fileID != "large" {
		t.Fatalf("expected largest rendition, got %q", ev.file.fileID)
	}
}

func TestClassify_PlainText(t *testing.T) {
	ev := classify(&tgbotapi.Message{Text: "Hello"})
	if ev.kind != eventText {
		t.Fatalf("expected text event, got %v", ev.kind)
	}
	if ev.text != "Hello" {
		t.Fatalf("unexpected text: %q", ev.text)
	}
}
