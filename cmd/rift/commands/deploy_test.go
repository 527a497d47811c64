package commands

import "testing"

func TestParseSetFlags(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:   "pairs",
			values: []string{"api_key=xyz", "contract=0x123"},
			want:   map[string]string{"api_key": "xyz", "contract": "0x123"},
		},
		{
			name:   "empty",
			values: nil,
			want:   map[string]string{},
		},
		{
			name:   "value with equals",
			values: []string{"rpc_url=https://host?a=b"},
			want:   map[string]string{"rpc_url": "https://host?a=b"},
		},
		{
			name:    "missing separator",
			values:  []string{"api_key"},
			wantErr: true,
		},
		{
			name:    "empty key",
			values:  []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSetFlags(tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSetFlags(%v) error = nil, want error", tt.values)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSetFlags(%v) error = %v", tt.values, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseSetFlags(%v) = %v, want %v", tt.values, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("config[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
