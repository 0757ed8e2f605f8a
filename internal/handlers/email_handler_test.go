package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBatch(t *testing.T) {
	testCases := []struct {
		name      string
		content   string
		expectErr bool
		count     int
	}{
		{
			name:    "Valid batch",
			content: `[{"subject": "Bill", "body": "<p>hi</p>", "snippet": "hi", "from": "billing@netflix.com"}]`,
			count:   1,
		},
		{
			name:    "Subject only entry accepted",
			content: `[{"subject": "Bill"}]`,
			count:   1,
		},
		{
			name:    "Body only entry accepted",
			content: `[{"body": "content"}]`,
			count:   1,
		},
		{
			name:    "Empty array is a valid batch",
			content: `[]`,
			count:   0,
		},
		{
			name:      "Not an array",
			content:   `{"subject": "Bill"}`,
			expectErr: true,
		},
		{
			name:      "Not JSON",
			content:   `subject,body`,
			expectErr: true,
		},
		{
			name:      "Entry not an object",
			content:   `["just a string"]`,
			expectErr: true,
		},
		{
			name:      "Entry missing both subject and body",
			content:   `[{"snippet": "hi", "from": "a@b.com"}]`,
			expectErr: true,
		},
		{
			name:      "Wrong field type",
			content:   `[{"subject": 42, "body": "x"}]`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			emails, err := ValidateBatch([]byte(tc.content))
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, emails, tc.count)
		})
	}
}

func TestValidateBatchDefaultsMissingFields(t *testing.T) {
	emails, err := ValidateBatch([]byte(`[{"subject": "Bill"}]`))

	assert.NoError(t, err)
	assert.Equal(t, "Bill", emails[0].Subject)
	assert.Equal(t, "", emails[0].Body)
	assert.Equal(t, "", emails[0].Snippet)
	assert.Equal(t, "", emails[0].From)
}
