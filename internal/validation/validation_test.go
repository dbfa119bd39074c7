package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type voteInput struct {
	GuestID     string `binding:"required,guestid"`
	Fingerprint string `binding:"omitempty,fingerprint"`
}

func TestRegisterValidators(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		in    voteInput
		valid bool
	}{
		{voteInput{GuestID: "guest_1234"}, true},
		{voteInput{GuestID: "guest_1234", Fingerprint: "fp:abc.def-123"}, true},
		{voteInput{GuestID: "short"}, false},
		{voteInput{GuestID: "has spaces in it"}, false},
		{voteInput{GuestID: "guest_1234", Fingerprint: "<script>"}, false},
	}
	for _, tt := range tests {
		err := binding.Validator.ValidateStruct(tt.in)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateStruct(%+v) error = %v, want valid=%v", tt.in, err, tt.valid)
		}
	}
}

func TestHelpers(t *testing.T) {
	if !GuestID("abcdefgh") || GuestID("abc") {
		t.Error("GuestID misclassified")
	}
	if !Fingerprint("device-0001") || Fingerprint("") {
		t.Error("Fingerprint misclassified")
	}
}
