package util

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"strings"

	"github.com/google/go-jsonnet"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnmarshalConfigurationFromFile reads a Jsonnet file, evaluates it and
// unmarshals the resulting JSON into a configuration structure.
// Environment variables are made available to the Jsonnet file as
// external variables, so that std.extVar() can be used to read them.
func UnmarshalConfigurationFromFile(path string, configuration interface{}) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return status.Errorf(codes.NotFound, "Failed to read file contents: %s", err)
	}
	return UnmarshalConfigurationFromJsonnet(path, string(data), configuration)
}

// UnmarshalConfigurationFromJsonnet is identical to
// UnmarshalConfigurationFromFile, except that the Jsonnet source is
// provided directly. The filename is only used in error messages and
// to resolve relative imports.
func UnmarshalConfigurationFromJsonnet(filename string, snippet string, configuration interface{}) error {
	vm := jsonnet.MakeVM()
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			return status.Errorf(codes.InvalidArgument, "Invalid environment variable: %#v", env)
		}
		vm.ExtVar(parts[0], parts[1])
	}
	jsonnetOutput, err := vm.EvaluateSnippet(filename, snippet)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to evaluate configuration: %s", err)
	}

	decoder := json.NewDecoder(bytes.NewBufferString(jsonnetOutput))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(configuration); err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to unmarshal configuration: %s", err)
	}
	return nil
}
