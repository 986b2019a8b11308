package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pmitros/edxml-tools/internal/config"
	"github.com/pmitros/edxml-tools/internal/feed"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/files/loader"
	"github.com/pmitros/edxml-tools/internal/propagate"
	"github.com/pmitros/edxml-tools/internal/tui"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

var feedCmd = &cobra.Command{
	Use:   "feed <course_path>",
	Short: "Build an RSS podcast of the course videos",
	Long: `Feed writes an RSS 2.0 podcast with one item per YouTube video in the
course, last video first. Enclosures point at <url-base>/<youtube id>.<ext>;
their length is read from --media-dir when the files are present there.

Run clean first so item identifiers are readable.

The output file is named <org>_<course>_<url_name>_<format>.rss.

Examples:
  edxml feed ./course --url-base https://media.example.org/6002x/ --format mp4
  edxml feed ./course --url-base https://media.example.org/ --video-info ./cache --media-dir ./media`,
	Args:              RequireCoursePath,
	ValidArgsFunction: completeDirectories,
	RunE:              runFeed,
}

type feedFlagValues struct {
	root, urlBase, courseURL string
	format                   string
	mediaDir, videoInfo      string
	outputDir                string
}

var feedFlags feedFlagValues

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringVar(&feedFlags.root, "root", "", "Root document relative to the course directory (default course.xml)")
	feedCmd.Flags().StringVar(&feedFlags.urlBase, "url-base", "", "URL the media files are served from (required unless set in edxml.yaml)")
	feedCmd.Flags().StringVar(&feedFlags.courseURL, "course-url", "", "URL of the course about page (default "+feed.DefaultCourseURL+")")
	feedCmd.Flags().StringVar(&feedFlags.format, "format", "", "Media format: mp4|webm|3gp|m4a (default "+feed.DefaultFormat+")")
	feedCmd.Flags().StringVar(&feedFlags.mediaDir, "media-dir", "", "Directory with local copies of the media files")
	feedCmd.Flags().StringVar(&feedFlags.videoInfo, "video-info", "", "Directory of cached <youtube id>.json video metadata")
	feedCmd.Flags().StringVarP(&feedFlags.outputDir, "output-dir", "o", "", "Directory the feed is written to (default current directory)")

	_ = feedCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// resolveFeedFlags fills unset flags from the feed section of edxml.yaml.
func resolveFeedFlags(flags feedFlagValues, projectCfg *config.ProjectConfig) feedFlagValues {
	if projectCfg == nil {
		return flags
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&flags.root, projectCfg.Root)
	fill(&flags.urlBase, projectCfg.Feed.URLBase)
	fill(&flags.courseURL, projectCfg.Feed.CourseURL)
	fill(&flags.format, projectCfg.Feed.Format)
	fill(&flags.mediaDir, projectCfg.Feed.MediaDir)
	fill(&flags.outputDir, projectCfg.Feed.OutputDir)
	fill(&flags.videoInfo, projectCfg.VideoInfo)
	return flags
}

func buildFeed(ctx context.Context, fsys filesystem.FileSystem, sourcePath string, flags feedFlagValues, logger edxml.Logger) (string, error) {
	format, err := feed.LookupFormat(flags.format)
	if err != nil {
		return "", err
	}
	if flags.urlBase == "" {
		return "", fmt.Errorf("--url-base is required: %w", edxml.ErrInvalidConfig)
	}
	root := flags.root
	if root == "" {
		root = edxml.DefaultRootDocument
	}

	res, err := loader.NewLoader(fsys, logger).Load(ctx, sourcePath, root)
	if err != nil {
		return "", err
	}

	var videos propagate.VideoSource
	if flags.videoInfo != "" {
		videos = propagate.NewCacheSource(fsys, filepath.ToSlash(flags.videoInfo))
	}
	rss, err := feed.NewBuilder(fsys, videos, logger).Build(ctx, res.Tree, feed.Options{
		URLBase:   flags.urlBase,
		CourseURL: flags.courseURL,
		Format:    format,
		MediaDir:  filepath.ToSlash(flags.mediaDir),
	})
	if err != nil {
		return "", err
	}
	data, err := rss.Encode()
	if err != nil {
		return "", err
	}

	course, err := feed.CourseInfo(res.Tree)
	if err != nil {
		return "", err
	}
	outputDir := flags.outputDir
	if outputDir == "" {
		outputDir = "."
	}
	out := path.Join(filepath.ToSlash(outputDir), feed.FileName(course, format))
	if err := fsys.WriteFile(out, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Verbose("Feed has %d item(s)", len(rss.Channel.Items))
	return out, nil
}

func runFeed(cmd *cobra.Command, args []string) error {
	sourcePath := coursePath(args[0])
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	out, err := buildFeed(ctx, filesystem.NewOSFileSystem(), sourcePath, resolveFeedFlags(feedFlags, projectCfg), newLogger(verbose))
	if err != nil {
		return fmt.Errorf("feed failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render(tui.SymbolCheck+" Saved "+out))
	return nil
}
