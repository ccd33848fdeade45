package limits

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateText covers empty, in-range and oversized text bodies.
func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "empty", text: "", wantErr: ErrMessageEmpty},
		{name: "short", text: "hello", wantErr: nil},
		{name: "at limit", text: strings.Repeat("a", MaxTextMessage), wantErr: nil},
		{name: "over limit", text: strings.Repeat("a", MaxTextMessage+1), wantErr: ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateText() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateText() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecipient(t *testing.T) {
	if err := ValidateRecipient("15551234567@s.whatsapp.net"); err != nil {
		t.Errorf("valid recipient rejected: %v", err)
	}
	if err := ValidateRecipient(""); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("empty recipient: got %v, want ErrMessageEmpty", err)
	}
	long := strings.Repeat("1", MaxRecipientLength+1)
	if err := ValidateRecipient(long); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("long recipient: got %v, want ErrMessageTooLarge", err)
	}
}

func TestValidateEvent(t *testing.T) {
	if err := ValidateEvent(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("nil event: got %v, want ErrMessageEmpty", err)
	}
	if err := ValidateEvent([]byte(`{"type":"connected"}`)); err != nil {
		t.Errorf("small event rejected: %v", err)
	}
	if err := ValidateEvent(make([]byte, MaxEventSize+1)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("oversized event: got %v, want ErrMessageTooLarge", err)
	}
}

// TestValidateQueueCapacity checks the accepted capacity window, including
// the default.
func TestValidateQueueCapacity(t *testing.T) {
	for _, c := range []int{MinQueueCapacity, DefaultQueueCapacity, MaxQueueCapacity} {
		if err := ValidateQueueCapacity(c); err != nil {
			t.Errorf("capacity %d rejected: %v", c, err)
		}
	}
	for _, c := range []int{0, -1, MaxQueueCapacity + 1} {
		if err := ValidateQueueCapacity(c); !errors.Is(err, ErrCapacityOutOfRange) {
			t.Errorf("capacity %d: got %v, want ErrCapacityOutOfRange", c, err)
		}
	}
}

func TestValidateMessageSize(t *testing.T) {
	if err := ValidateMessageSize([]byte("abcd"), 4); err != nil {
		t.Errorf("at limit rejected: %v", err)
	}
	err := ValidateMessageSize([]byte("abcde"), 4)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("got %v, want ErrMessageTooLarge", err)
	}
	if !strings.Contains(err.Error(), "size 5 exceeds limit 4") {
		t.Errorf("error lacks size context: %v", err)
	}
}
