package manager

import (
	"errors"
	"testing"
)

func TestNewInstanceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    InstanceName
		wantErr error
	}{
		{"simple", "main", "main", nil},
		{"with hyphen", "sonarr-4k", "sonarr-4k", nil},
		{"with underscore", "anime_tv", "anime_tv", nil},
		{"trims whitespace", "  main  ", "main", nil},
		{"empty", "", "", ErrEmptyInstanceName},
		{"whitespace only", "   ", "", ErrEmptyInstanceName},
		{"leading digit", "4k", "", ErrInvalidInstanceName},
		{"leading hyphen", "-main", "", ErrInvalidInstanceName},
		{"contains space", "my instance", "", ErrInvalidInstanceName},
		{"contains dot", "main.backup", "", ErrInvalidInstanceName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInstanceName(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewInstanceName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewInstanceName(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NewInstanceName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInstanceKey_String(t *testing.T) {
	key := InstanceKey{Plugin: "sonarr", Instance: "main"}
	if got := key.String(); got != "sonarr.instances[main]" {
		t.Errorf("String() = %q, want %q", got, "sonarr.instances[main]")
	}
}

func TestInstanceKey_Less(t *testing.T) {
	tests := []struct {
		name string
		a, b InstanceKey
		want bool
	}{
		{
			name: "plugin name wins",
			a:    InstanceKey{Plugin: "radarr", Instance: "zzz"},
			b:    InstanceKey{Plugin: "sonarr", Instance: "aaa"},
			want: true,
		},
		{
			name: "instance breaks plugin tie",
			a:    InstanceKey{Plugin: "sonarr", Instance: "anime"},
			b:    InstanceKey{Plugin: "sonarr", Instance: "main"},
			want: true,
		},
		{
			name: "equal keys are not less",
			a:    InstanceKey{Plugin: "sonarr", Instance: "main"},
			b:    InstanceKey{Plugin: "sonarr", Instance: "main"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Less(tt.b); got != tt.want {
				t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRef_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		ref       Ref
		declaring PluginName
		want      InstanceKey
	}{
		{
			name:      "qualified reference keeps its plugin",
			ref:       Ref{Plugin: "sonarr", Instance: "main"},
			declaring: "prowlarr",
			want:      InstanceKey{Plugin: "sonarr", Instance: "main"},
		},
		{
			name:      "unqualified reference defaults to declaring plugin",
			ref:       Ref{Instance: "anime"},
			declaring: "sonarr",
			want:      InstanceKey{Plugin: "sonarr", Instance: "anime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Resolve(tt.declaring); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.declaring, got, tt.want)
			}
		})
	}
}

func TestRef_String(t *testing.T) {
	qualified := Ref{Plugin: "radarr", Instance: "uhd"}
	if got := qualified.String(); got != "radarr.instances[uhd]" {
		t.Errorf("qualified String() = %q", got)
	}

	unqualified := Ref{Instance: "anime"}
	if got := unqualified.String(); got != "instances[anime]" {
		t.Errorf("unqualified String() = %q", got)
	}
}
