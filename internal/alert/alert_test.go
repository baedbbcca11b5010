package alert

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firingAlertJSON(prefix string) string {
	return fmt.Sprintf(`{"status": "firing", "generatorURL": "http://something/this", "fingerprint": "581dd91e73c77248", "labels": { "alertname": "%sAlert Name" }, "annotations": { "summary": "Annotation Summary"}}`, prefix)
}

func resolvedAlertJSON(prefix string) string {
	return fmt.Sprintf(`{"status": "resolved", "generatorURL": "http://something/this", "fingerprint": "581dd91e73c77248", "labels": { "alertname": "%sAlert Name" }, "annotations": { "summary": "Annotation Summary"}}`, prefix)
}

func TestParseMessage(t *testing.T) {
	body := fmt.Sprintf(`{"alerts": [%s, %s]}`, firingAlertJSON(""), resolvedAlertJSON("[high] "))

	message, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	require.Len(t, message.Alerts, 2)

	firing := message.Alerts[0]
	assert.Equal(t, "firing", firing.Status)
	assert.Equal(t, "581dd91e73c77248", firing.Fingerprint)
	assert.Equal(t, "Alert Name", firing.Labels.AlertName)
	assert.Equal(t, "Annotation Summary", firing.Annotations.Summary)
	assert.Equal(t, "http://something/this", firing.GeneratorURL)

	assert.Equal(t, "resolved", message.Alerts[1].Status)
	assert.Equal(t, "[high] Alert Name", message.Alerts[1].Labels.AlertName)
}

func TestParseMessageBadJSON(t *testing.T) {
	_, err := ParseMessage([]byte(`{"alerts": [`))
	assert.Error(t, err)
}

func TestParseMessageMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing status",
			body: `{"alerts": [{"fingerprint": "abc", "labels": {"alertname": "x"}}]}`,
			want: "missing status",
		},
		{
			name: "missing fingerprint",
			body: `{"alerts": [{"status": "firing", "labels": {"alertname": "x"}}]}`,
			want: "missing fingerprint",
		},
		{
			name: "missing alertname",
			body: `{"alerts": [{"status": "firing", "fingerprint": "abc"}]}`,
			want: "missing labels.alertname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseMessageOptionalFields(t *testing.T) {
	// generatorURL and summary may be absent.
	body := `{"alerts": [{"status": "firing", "fingerprint": "abc", "labels": {"alertname": "Alert"}}]}`
	message, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, message.Alerts[0].GeneratorURL)
	assert.Empty(t, message.Alerts[0].Annotations.Summary)
}

func TestPriorityClassification(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   Priority
	}{
		{"Alert", "firing", Normal},
		{"[critical] Alert", "firing", Emergency},
		{"[CRIT] Alert", "firing", Emergency},
		{"[high] Alert", "firing", High},
		{"[HIGH] Alert", "firing", High},
		{"Alert", "resolved", VeryLow},
		{"[critical] Alert", "resolved", VeryLow},
		{"[high] Alert", "resolved", VeryLow},
		{"[CRIT] Alert", "pending", VeryLow},
	}

	for _, tt := range tests {
		t.Run(tt.status+" "+tt.name, func(t *testing.T) {
			a := Alert{Status: tt.status, Labels: Labels{AlertName: tt.name}}
			assert.Equal(t, tt.want, a.Priority())
		})
	}
}

func TestPriorityJSONRoundTrip(t *testing.T) {
	for _, p := range []Priority{VeryLow, Low, Normal, High, Emergency} {
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var back Priority
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, p, back)
	}

	data, err := json.Marshal(Emergency)
	require.NoError(t, err)
	assert.Equal(t, `"Emergency"`, string(data))

	var p Priority
	assert.Error(t, json.Unmarshal([]byte(`"Critical"`), &p))
}
