package model

import (
	"strings"
	"testing"
)

func TestCreateFeedbackRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateFeedbackRequest
		wantErr bool
	}{
		{name: "valid", req: CreateFeedbackRequest{RecipientID: 3, Text: "Ótimo trabalho no sprint."}},
		{name: "missing recipient", req: CreateFeedbackRequest{Text: "texto"}, wantErr: true},
		{name: "blank text", req: CreateFeedbackRequest{RecipientID: 3, Text: "   "}, wantErr: true},
		{name: "overlong text", req: CreateFeedbackRequest{RecipientID: 3, Text: strings.Repeat("a", maxFeedbackTextLen+1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSentiment_Valid(t *testing.T) {
	for _, s := range []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Sentiment("mixed").Valid() {
		t.Error("unknown sentiment should be invalid")
	}
}
