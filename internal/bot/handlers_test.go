package bot

import (
	"context"
	"strings"
	"testing"

	"assistbot/internal/llm"
	"assistbot/internal/search"
	"assistbot/internal/storage"
)

func TestWebSearch_SearchesThenSummarizes(t *testing.T) {
	sc := &fakeSearch{result: search.Result{
		Summary: "Cats are small carnivorous mammals.",
		Links:   []string{"https://en.wikipedia.org/wiki/Cat", "https://example.com/cats"},
	}}
	lc := &fakeLLM{resp: llm.Response{Content: "Cats, in short."}}
	tb := newTestBot(t, lc, sc)

	tb.bot.handleWebSearch(context.Background(), userMessage(123, "/websearch cats"), []string{"cats"})

	if len(sc.queries) != 1 || sc.queries[0] != "cats" {
		t.Fatalf("unexpected queries: %v", sc.queries)
	}
	if len(lc.prompts) != 1 || !strings.Contains(lc.prompts[0], "Cats are small carnivorous mammals.") {
		t.Fatalf("summarization prompt missing search summary: %v", lc.prompts)
	}
	reply := tb.sender.lastText(t)
	if !strings.Contains(reply, "Cats, in short.") {
		t.Fatalf("summary missing from reply: %q", reply)
	}
	if !strings.Contains(reply, "https://en.wikipedia.org/wiki/Cat") {
		t.Fatalf("links missing from reply: %q", reply)
	}
}

func TestWebSearch_EmptyQueryRejectedLocally(t *testing.T) {
	sc := &fakeSearch{}
	tb := newTestBot(t, &fakeLLM{}, sc)

	tb.bot.handleWebSearch(context.Background(), userMessage(123, "/websearch"), nil)

	if len(sc.queries) != 0 {
		t.Fatalf("search must not be called for empty query: %v", sc.queries)
	}
	if !strings.Contains(tb.sender.lastText(t), "search query") {
		t.Fatalf("usage reply missing: %q", tb.sender.lastText(t))
	}
}

func TestWebSearch_ServiceFailureYieldsApology(t *testing.T) {
	sc := &fakeSearch{err: search.ErrUnavailable}
	tb := newTestBot(t, &fakeLLM{}, sc)

	tb.bot.handleWebSearch(context.Background(), userMessage(123, "/websearch cats"), []string{"cats"})

	if got := tb.sender.lastText(t); got != replySomethingWrong {
		t.Fatalf("reply = %q", got)
	}
}

func TestWebSearch_EmptySummaryGetsPlaceholder(t *testing.T) {
	sc := &fakeSearch{result: search.Result{}}
	lc := &fakeLLM{resp: llm.Response{Content: "nothing found"}}
	tb := newTestBot(t, lc, sc)

	tb.bot.handleWebSearch(context.Background(), userMessage(123, "/websearch x"), []string{"x"})

	if len(lc.prompts) != 1 || !strings.Contains(lc.prompts[0], "No relevant summary found.") {
		t.Fatalf("placeholder missing from prompt: %v", lc.prompts)
	}
}

func TestReferral_StoresCode(t *testing.T) {
	tb := newTestBot(t, &fakeLLM{}, &fakeSearch{})
	tb.bot.handleReferral(context.Background(), userMessage(123, "/referral FRIEND42"), []string{"FRIEND42"})

	u, ok, _ := tb.store.GetUser(context.Background(), 123)
	if !ok || u.ReferralCode != "FRIEND42" {
		t.Fatalf("referral code not stored: %+v", u)
	}
	if !strings.Contains(tb.sender.lastText(t), "FRIEND42") {
		t.Fatalf("confirmation missing: %q", tb.sender.lastText(t))
	}
}

func TestReferral_KeepsRegisteredState(t *testing.T) {
	tb := newTestBot(t, &fakeLLM{}, &fakeSearch{})
	ctx := context.Background()
	tb.bot.handleContact(ctx, userMessage(123, ""), "+1")
	tb.bot.handleReferral(ctx, userMessage(123, "/referral ABC"), []string{"ABC"})

	u, _, _ := tb.store.GetUser(ctx, 123)
	if u.State != storage.StateRegistered {
		t.Fatalf("referral must not regress state: %q", u.State)
	}
	if u.Phone != "+1" {
		t.Fatalf("referral must not clear phone: %q", u.Phone)
	}
}

func TestReferral_MissingCodeUsage(t *testing.T) {
	tb := newTestBot(t, &fakeLLM{}, &fakeSearch{})
	tb.bot.handleReferral(context.Background(), userMessage(123, "/referral"), nil)

	if !strings.Contains(tb.sender.lastText(t), "Usage") {
		t.Fatalf("usage reply missing: %q", tb.sender.lastText(t))
	}
}

func TestSentiment_DelegatesToCompletion(t *testing.T) {
	lc := &fakeLLM{resp: llm.Response{Content: "Positive."}}
	tb := newTestBot(t, lc, &fakeSearch{})
	tb.bot.handleSentiment(context.Background(), userMessage(123, "/sentiment I love it"), []string{"I", "love", "it"})

	if len(lc.prompts) != 1 || !strings.Contains(lc.prompts[0], "I love it") {
		t.Fatalf("unexpected prompts: %v", lc.prompts)
	}
	if got := tb.sender.lastText(t); got != "Positive." {
		t.Fatalf("reply = %q", got)
	}
}

func TestHelp_ListsEnabledCommands(t *testing.T) {
	tb := newTestBot(t, &fakeLLM{}, &fakeSearch{})
	tb.bot.handleHelp(context.Background(), userMessage(123, "/help"), nil)

	reply := tb.sender.lastText(t)
	for _, name := range []string{"/start", "/websearch", "/referral", "/sentiment"} {
		if !strings.Contains(reply, name) {
			t.Errorf("help missing %s: %q", name, reply)
		}
	}
}

func TestReport_AdminOnly(t *testing.T) {
	tb := newTestBot(t, &fakeLLM{}, &fakeSearch{})
	tb.bot.adminUserID = 999
	tb.bot.handleReport(context.Background(), userMessage(123, "/report"), nil)

	if !strings.Contains(tb.sender.lastText(t), "administrator only") {
		t.Fatalf("non-admin should be rejected: %q", tb.sender.lastText(t))
	}
}

func TestReport_SendsDigestToAdmin(t *testing.T) {
	lc := &fakeLLM{resp: llm.Response{Content: "yo"}}
	tb := newTestBot(t, lc, &fakeSearch{})
	tb.bot.adminUserID = 999
	ctx := context.Background()
	tb.bot.handleChat(ctx, userMessage(123, "Hello"))

	admin := userMessage(999, "/report")
	tb.bot.handleReport(ctx, admin, nil)

	reply := tb.sender.lastText(t)
	if !strings.Contains(reply, "Usage report") || !strings.Contains(reply, "Chat messages: 1") {
		t.Fatalf("digest missing: %q", reply)
	}
}
