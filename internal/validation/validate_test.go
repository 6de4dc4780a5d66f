package validation

import (
	"strings"
	"testing"

	"github.com/perivale/s3mirror/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		wantError bool
		errMsg    string
	}{
		// Valid bucket names
		{"valid_simple", "my-bucket", false, ""},
		{"valid_with_numbers", "my-bucket123", false, ""},
		{"valid_with_dots", "my.bucket", false, ""},
		{"valid_min_length", "abc", false, ""},
		{"valid_max_length", strings.Repeat("a", 63), false, ""},
		{"valid_starts_with_number", "1bucket", false, ""},

		// Invalid bucket names
		{"empty", "", true, "bucket name cannot be empty"},
		{"too_short", "ab", true, "bucket name must be between 3 and 63 characters"},
		{"too_long", strings.Repeat("a", 64), true, "bucket name must be between 3 and 63 characters"},
		{
			"starts_with_hyphen",
			"-bucket",
			true,
			"bucket name must begin and end with a letter or number",
		},
		{
			"ends_with_dot",
			"bucket.",
			true,
			"bucket name must begin and end with a letter or number",
		},
		{"contains_uppercase", "MyBucket", true, "invalid character"},
		{"contains_underscore", "my_bucket", true, "invalid character"},
		{"contains_space", "my bucket", true, "invalid character"},
		{"double_dots", "my..bucket", true, "invalid character sequence"},
		{"dot_hyphen", "my.-bucket", true, "invalid character sequence"},
		{"ip_address", "192.168.1.1", true, "must not be formatted as an IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidateBucketName(%q) expected error, got nil", tt.bucket)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateBucketName(%q) error = %q, want to contain %q", tt.bucket, err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateBucketName(%q) expected no error, got %q", tt.bucket, err)
				}
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantError bool
		errMsg    string
	}{
		// Valid object keys
		{"valid_simple", "my-file.txt", false, ""},
		{"valid_with_path", "folder/subfolder/file.txt", false, ""},
		{"valid_unicode", "файл.txt", false, ""},
		{"valid_spaces", "file with spaces.txt", false, ""},
		{"valid_max_length", strings.Repeat("a", 1024), false, ""},

		// Invalid object keys
		{"empty", "", true, "object key cannot be empty"},
		{"too_long", strings.Repeat("a", 1025), true, "object key exceeds 1024 characters"},
		{"path_traversal", "../secret.txt", true, "path traversal"},
		{"path_traversal_nested", "folder/../../secret.txt", true, "path traversal"},
		{"control_characters", "file\x00with\x01null.txt", true, "control characters"},
		{"newline", "file\nwith\nnewlines.txt", true, "control characters"},
		{"del_character", "file\x7fdel.txt", true, "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidateObjectKey(%q) expected error, got nil", tt.key)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateObjectKey(%q) error = %q, want to contain %q", tt.key, err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateObjectKey(%q) expected no error, got %q", tt.key, err)
				}
			}
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantError bool
		errMsg    string
	}{
		{"empty_is_valid", "", false, ""},
		{"valid_prefix", "base/folder1/", false, ""},
		{"valid_without_trailing_slash", "base/folder1", false, ""},
		{"leading_slash", "/base/folder1/", true, "must not start with a slash"},
		{"path_traversal", "base/../other/", true, "path traversal"},
		{"control_characters", "base\x00/folder1/", true, "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrefix(tt.prefix)
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidatePrefix(%q) expected error, got nil", tt.prefix)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidatePrefix(%q) error = %q, want to contain %q", tt.prefix, err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidatePrefix(%q) expected no error, got %q", tt.prefix, err)
				}
			}
		})
	}
}

func TestValidateLocalRoot(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		wantError bool
	}{
		{"valid_absolute", "/tmp/mirror", false},
		{"valid_relative", "out", false},
		{"empty", "", true},
		{"whitespace_only", "   ", true},
		{"control_characters", "/tmp/\x00mirror", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocalRoot(tt.root)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateLocalRoot(%q) error = %v, wantError %v", tt.root, err, tt.wantError)
			}
		})
	}
}

func TestValidateTargets(t *testing.T) {
	tests := []struct {
		name      string
		targets   []string
		wantError bool
		errMsg    string
	}{
		{"single_target", []string{"folder1"}, false, ""},
		{"multiple_targets", []string{"folder1", "folder2/"}, false, ""},
		{"empty_list", nil, true, "at least one scan target is required"},
		{"blank_target", []string{"folder1", "  "}, true, "scan target cannot be empty"},
		{"traversal_target", []string{"../folder1"}, true, "path traversal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargets(tt.targets)
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidateTargets(%v) expected error, got nil", tt.targets)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateTargets(%v) error = %q, want to contain %q", tt.targets, err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateTargets(%v) expected no error, got %q", tt.targets, err)
				}
			}
		})
	}
}

func TestValidationErrorClassification(t *testing.T) {
	if !errors.IsInvalidInput(ValidateBucketName("")) {
		t.Error("bucket name errors should classify as invalid input")
	}
	if !errors.IsInvalidInput(ValidateObjectKey("../x")) {
		t.Error("object key errors should classify as invalid input")
	}
	if !errors.IsInvalidInput(ValidatePrefix("/abs")) {
		t.Error("prefix errors should classify as invalid input")
	}
	if !errors.IsInvalidInput(ValidateTargets(nil)) {
		t.Error("target errors should classify as invalid input")
	}
}
