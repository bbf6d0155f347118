package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/buildbarn/bb-treehash/pkg/blobstore"
	"github.com/buildbarn/bb-treehash/pkg/configuration"
	"github.com/buildbarn/bb-treehash/pkg/digest"
	"github.com/buildbarn/bb-treehash/pkg/step"
	"github.com/buildbarn/bb-treehash/pkg/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const longDescription = `Computes a set of digests of a single input in one pass.

Every step has the form

  ["tree" ["." blocksize ["." levels]] ":"] algorithm ["." params] [":" format]

The optional "tree" prefix causes the root digest of a Merkle tree to be
computed. The tree splits the input into blocks of the given size
(default 1024 bytes) and uses the algorithm both for the blocks and for
combining digests. The number of levels permits 2^levels subtrees of
equal height at the root while hashing (default 0).

The input is either "-" for standard input, the path of a local file or
the URL of an object in a storage bucket (e.g., "s3://bucket/key").

Digests are printed on a single line, separated by spaces.`

func newCommand(stdin io.Reader, stdout io.Writer, logger *logrus.Logger) *cobra.Command {
	var configurationPath string
	var listAlgorithms bool
	c := &cobra.Command{
		Use:          "treehash STEP... INPUT",
		Short:        "Compute hashes and hash tree roots of an input",
		Long:         longDescription,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			if listAlgorithms {
				for _, name := range digest.GetFunctionNames() {
					fmt.Fprintln(stdout, name)
				}
				return nil
			}

			var config configuration.TreehashConfiguration
			if configurationPath != "" {
				loaded, err := configuration.GetTreehashConfiguration(configurationPath)
				if err != nil {
					return err
				}
				config = *loaded
			}

			if len(args) == 0 {
				return status.Error(codes.InvalidArgument, "No input provided")
			}
			descriptions, input := args[:len(args)-1], args[len(args)-1]
			if len(descriptions) == 0 {
				descriptions = config.DefaultSteps
			}
			if len(descriptions) == 0 {
				return status.Error(codes.InvalidArgument, "No steps provided")
			}

			// Parse all steps before reading any input.
			parser := config.Steps.NewParser(false)
			steps := make([]*step.Step, 0, len(descriptions))
			for _, description := range descriptions {
				s, err := parser.NewStepFromString(description)
				if err != nil {
					return err
				}
				logger.WithField("step", s.String()).Debug("Parsed step")
				steps = append(steps, s)
			}

			ctx := context.Background()
			inputOpener := blobstore.NewInputOpener(
				stdin,
				func(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
					return blob.OpenBucket(ctx, bucketURL)
				},
				config.Input.GetChunkPolicy(),
				config.Input.MaximumRetries)
			r, err := inputOpener.Open(ctx, input)
			if err != nil {
				return err
			}
			defer r.Close()
			if err := step.HashChunks(ctx, r, steps); err != nil {
				return util.StatusWrapf(err, "Failed to hash %#v", input)
			}

			sums := make([]string, 0, len(steps))
			for _, s := range steps {
				sums = append(sums, s.Sum())
			}
			logger.WithFields(logrus.Fields{
				"input":      input,
				"size_bytes": steps[0].GetDigest().GetSizeBytes(),
			}).Debug("Hashed input")
			_, err = fmt.Fprintln(stdout, strings.Join(sums, " "))
			return err
		},
	}
	c.Flags().StringVar(&configurationPath, "config", "", "Jsonnet file providing defaults for steps and inputs")
	c.Flags().BoolVar(&listAlgorithms, "list", false, "List the supported hashing algorithms")
	c.Flags().SetInterspersed(false)
	return c
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if os.Getenv("TREEHASH_DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := newCommand(os.Stdin, os.Stdout, logger).Execute(); err != nil {
		logger.WithField("code", status.Code(err).String()).Fatal(status.Convert(err).Message())
	}
}
