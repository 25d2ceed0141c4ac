package dashboard_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Mehdichaaki/dashbord/internal/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	t.Run("Loaded", func(t *testing.T) {
		v := dashboard.Load(context.Background(), func(context.Context) ([]string, error) {
			return []string{"a"}, nil
		})
		assert.Equal(t, dashboard.Loaded, v.State)
		assert.True(t, v.IsLoaded())
		assert.Equal(t, []string{"a"}, v.Data)
	})

	t.Run("Error", func(t *testing.T) {
		v := dashboard.Load(context.Background(), func(context.Context) (int, error) {
			return 0, &dashboard.APIError{Status: 500, Message: "internal server error"}
		})
		assert.True(t, v.IsError())
		assert.Equal(t, "internal server error", v.Err)
		assert.Equal(t, "error", v.State.String())
	})

	t.Run("FinishRequiresLoading", func(t *testing.T) {
		var v dashboard.View[int]
		v = v.Finish(1, nil)
		assert.Equal(t, dashboard.Idle, v.State)

		v = v.Start()
		assert.True(t, v.IsLoading())
		assert.Equal(t, v, v.Start())

		v = v.Finish(0, errors.New("dial tcp: refused"))
		assert.Equal(t, "could not reach the records service", v.Err)
		assert.Equal(t, v, v.Finish(2, nil))
	})
}

var people = []dashboard.User{
	{Name: "Ana Lopez", Email: "ana@example.com", PhoneNumber: "555-0101", Grade: "A", Year: "2024"},
	{Name: "Ben Okafor", Email: "ben@school.org", PhoneNumber: "555-0102", Grade: "B+", Year: "2023"},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"Empty", "", 2},
		{"Whitespace", "   ", 2},
		{"NameIgnoresCase", "ANA", 1},
		{"Email", "school.org", 1},
		{"Phone", "0102", 1},
		{"Grade", "b+", 1},
		{"Year", "202", 2},
		{"NoMatch", "zzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, dashboard.Filter(people, tt.query), tt.want)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, dashboard.WriteCSV(&buf, []dashboard.User{
		people[0],
		{Name: "Lopez, Jr.", Email: "jr@example.com", PhoneNumber: "1", Grade: "C", Year: "2022"},
	}))

	assert.Equal(t,
		"name,email,phoneNumber,grade,year\n"+
			"Ana Lopez,ana@example.com,555-0101,A,2024\n"+
			"\"Lopez, Jr.\",jr@example.com,1,C,2022\n",
		buf.String())
}

func TestBuildInfoDefaults(t *testing.T) {
	assert.Equal(t, "student-records-dashboard", dashboard.ServiceName)
	assert.Equal(t, "dev", dashboard.Version)
	assert.Equal(t, "unknown", dashboard.GitCommit)
	assert.Equal(t, "unknown", dashboard.BuildTime)
}
