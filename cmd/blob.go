package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cdalton713/easier-blob-storage/core/storage"
	"github.com/cdalton713/easier-blob-storage/feature/blob"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sasURL string

	downloadSubFolders    []string
	downloadOnly          []string
	downloadIgnore        []string
	downloadDeleteAfter   bool
	downloadMoveAfter     string
	downloadMoveContainer string
	downloadMetadata      map[string]string

	listPrefix   string
	listMetadata bool

	sasHours    float64
	sasReadOnly bool
	sasNoRead   bool
	sasNoWrite  bool
	sasNoDelete bool
	sasNoAdd    bool
	sasNoCreate bool

	transferContainer string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file> [blob-path]",
	Short: "Upload a local file",
	Long:  "Uploads a file, replacing any existing blob. Without a blob path the file name is used.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		name := ""
		if len(args) == 2 {
			name = args[1]
		} else if sasURL == "" {
			name = filepath.Base(args[0])
		}

		return a.blob.Upload(cmd.Context(), args[0], ref(name))
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <blob-path> <dest-dir>",
	Short: "Download a blob into a local folder",
	Long: `Downloads a blob into dest-dir, optionally filtered by file type.
Metadata, delete and move run after the blob is either downloaded or skipped by the
type filter. A failed download stops before any of them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		policy := blob.DownloadPolicy{
			SubFolders:    downloadSubFolders,
			OnlyTypes:     downloadOnly,
			IgnoredTypes:  downloadIgnore,
			DeleteAfter:   downloadDeleteAfter,
			MoveAfter:     downloadMoveAfter,
			MoveContainer: downloadMoveContainer,
			Metadata:      downloadMetadata,
		}

		res, err := a.blob.Download(cmd.Context(), ref(args[0]), args[1], policy)
		if err != nil {
			return err
		}

		if res.Skipped {
			a.logger.Info("Skipped blob", zap.String("blob", res.Blob), zap.String("reason", res.Reason))
			return nil
		}
		fmt.Println(res.LocalPath)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List blobs in the container",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		opts := storage.ListOptions{
			Prefix:  listPrefix,
			Include: storage.Include{Metadata: listMetadata},
		}
		for item, err := range a.blob.List(cmd.Context(), opts) {
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d\t%s\n", item.Name, item.Size, item.LastModified.Format("2006-01-02 15:04:05"))
			for k, v := range item.Metadata {
				fmt.Printf("  %s=%s\n", k, v)
			}
		}
		return nil
	},
}

var sasCmd = &cobra.Command{
	Use:   "sas <blob-path>",
	Short: "Create a signed URL for a blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		var opts []blob.SASOption
		if sasReadOnly {
			opts = append(opts, blob.ReadOnly())
		}
		if sasNoRead {
			opts = append(opts, blob.DenyRead())
		}
		if sasNoWrite {
			opts = append(opts, blob.DenyWrite())
		}
		if sasNoDelete {
			opts = append(opts, blob.DenyDelete())
		}
		if sasNoAdd {
			opts = append(opts, blob.DenyAdd())
		}
		if sasNoCreate {
			opts = append(opts, blob.DenyCreate())
		}

		grant, err := a.blob.CreateSAS(args[0], sasHours, opts...)
		if err != nil {
			return err
		}
		fmt.Println(grant.URL)
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <source> <destination>",
	Short: "Server-side copy of a blob",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, blob.ActionCopy, args)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <source> <destination>",
	Short: "Server-side copy of a blob, then delete the source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, blob.ActionMove, args)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <blob-path>",
	Short: "Delete a blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		return a.blob.Delete(cmd.Context(), ref(args[0]))
	},
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Read and write blob metadata",
}

var metadataGetCmd = &cobra.Command{
	Use:   "get <blob-path>",
	Short: "Print blob properties and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		props, err := a.blob.GetMetadata(cmd.Context(), ref(args[0]))
		if err != nil {
			return err
		}
		return printJSON(props)
	},
}

var metadataSetCmd = &cobra.Command{
	Use:   "set <blob-path> key=value...",
	Short: "Replace blob metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metadata, err := parsePairs(args[1:])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		return a.blob.SetMetadata(cmd.Context(), ref(args[0]), metadata)
	},
}

var metadataClearCmd = &cobra.Command{
	Use:   "clear <blob-path>",
	Short: "Remove all blob metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		return a.blob.ClearMetadata(cmd.Context(), ref(args[0]))
	},
}

func runTransfer(cmd *cobra.Command, action blob.Action, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	opts := blob.TransferOptions{DestContainer: transferContainer}
	if sasURL != "" {
		opts.Source = blob.SASURL(sasURL)
	}
	return a.blob.Transfer(cmd.Context(), action, args[0], args[1], opts)
}

// ref prefers the --sas-url flag over a path.
func ref(path string) blob.Ref {
	if sasURL != "" {
		return blob.SASURL(sasURL)
	}
	return blob.Path(path)
}

// parsePairs turns key=value arguments into a metadata map.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata pair %q, expected key=value", arg)
		}
		out[k] = v
	}
	return out, nil
}

func init() {
	for _, c := range []*cobra.Command{uploadCmd, downloadCmd, copyCmd, moveCmd, deleteCmd, metadataGetCmd, metadataSetCmd, metadataClearCmd} {
		c.Flags().StringVar(&sasURL, "sas-url", "", "Address the blob by signed URL instead of path")
	}

	downloadCmd.Flags().StringSliceVar(&downloadSubFolders, "sub-folder", nil, "Sub folders under dest-dir to download into")
	downloadCmd.Flags().StringSliceVar(&downloadOnly, "only", nil, "Only download these file types")
	downloadCmd.Flags().StringSliceVar(&downloadIgnore, "ignore", nil, "Never download these file types")
	downloadCmd.Flags().BoolVar(&downloadDeleteAfter, "delete-after", false, "Delete the blob after downloading")
	downloadCmd.Flags().StringVar(&downloadMoveAfter, "move-after", "", "Move the blob to this path after downloading")
	downloadCmd.Flags().StringVar(&downloadMoveContainer, "move-container", "", "Container to move into (defaults to the current one)")
	downloadCmd.Flags().StringToStringVar(&downloadMetadata, "metadata", nil, "Metadata to set on the blob after downloading")

	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only list blobs under this prefix")
	listCmd.Flags().BoolVar(&listMetadata, "metadata", false, "Include blob metadata")

	sasCmd.Flags().Float64Var(&sasHours, "hours", 1, "Hours until the URL expires")
	sasCmd.Flags().BoolVar(&sasReadOnly, "read-only", false, "Grant read only")
	sasCmd.Flags().BoolVar(&sasNoRead, "no-read", false, "Deny read")
	sasCmd.Flags().BoolVar(&sasNoWrite, "no-write", false, "Deny write")
	sasCmd.Flags().BoolVar(&sasNoDelete, "no-delete", false, "Deny delete")
	sasCmd.Flags().BoolVar(&sasNoAdd, "no-add", false, "Deny add")
	sasCmd.Flags().BoolVar(&sasNoCreate, "no-create", false, "Deny create")

	copyCmd.Flags().StringVar(&transferContainer, "container", "", "Destination container (defaults to the current one)")
	moveCmd.Flags().StringVar(&transferContainer, "container", "", "Destination container (defaults to the current one)")

	metadataCmd.AddCommand(metadataGetCmd, metadataSetCmd, metadataClearCmd)
	RootCmd.AddCommand(uploadCmd, downloadCmd, listCmd, sasCmd, copyCmd, moveCmd, deleteCmd, metadataCmd)
}
