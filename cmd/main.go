package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/knights-analytics/gluedata"
	"github.com/knights-analytics/gluedata/backends"
	"github.com/knights-analytics/gluedata/datasets"
	"github.com/knights-analytics/gluedata/inference"
	"github.com/knights-analytics/gluedata/tasks"
)

var modelPath string
var modelName string
var destination string
var taskName string
var dataDir string
var cacheDir string
var splitName string
var maxSeqLength int
var limit int
var overwriteCache bool
var tokenizerRuntime string
var modelRuntime string
var onnxLibraryPath string
var batchSize int
var inputPath string
var outputPath string
var splitList string
var authToken string
var verbose bool

var downloadCommand = &cli.Command{
	Name:  "download",
	Usage: "Download an exported onnx classifier from huggingface",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Model name on the huggingface hub",
			Aliases:     []string{"m"},
			Destination: &modelName,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "destination",
			Usage:       "Folder to download the model into",
			Aliases:     []string{"d"},
			Destination: &destination,
			Value:       "./models",
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Huggingface auth token for private models",
			Destination: &authToken,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Print download progress",
			Destination: &verbose,
		},
	},
	Action: func(_ *cli.Context) error {
		options := gluedata.NewDownloadOptions()
		options.AuthToken = authToken
		options.Verbose = verbose
		downloadedPath, err := gluedata.DownloadModel(modelName, destination, options)
		if err != nil {
			return err
		}
		fmt.Println(downloadedPath)
		return nil
	},
}

var cacheCommand = &cli.Command{
	Name:  "cache",
	Usage: "Build the feature cache for a task split",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "task",
			Usage:       "Task name, one of: " + strings.Join(tasks.Names(), ", "),
			Aliases:     []string{"t"},
			Destination: &taskName,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Folder with the task's raw files",
			Destination: &dataDir,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Folder with the tokenizer files",
			Aliases:     []string{"m"},
			Destination: &modelPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "split",
			Usage:       "Split to convert: train, dev or test",
			Aliases:     []string{"s"},
			Destination: &splitName,
			Value:       "train",
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Folder for the cache file, defaults to the data dir",
			Destination: &cacheDir,
		},
		&cli.IntFlag{
			Name:        "max-length",
			Usage:       "Maximum sequence length",
			Destination: &maxSeqLength,
			Value:       gluedata.DefaultMaxSeqLength,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Convert at most this many examples",
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "overwrite",
			Usage:       "Regenerate the cache even when present",
			Destination: &overwriteCache,
		},
		&cli.StringFlag{
			Name:        "tokenizer-runtime",
			Usage:       "Tokenizer runtime, GO or RUST",
			Destination: &tokenizerRuntime,
			Value:       "GO",
		},
	},
	Action: func(_ *cli.Context) error {
		split, err := tasks.ParseSplit(splitName)
		if err != nil {
			return err
		}
		tokenizer, err := backends.LoadTokenizer(modelPath, tokenizerRuntime)
		if err != nil {
			return err
		}
		defer func() {
			if destroyErr := tokenizer.Destroy(); destroyErr != nil {
				log.Println(destroyErr)
			}
		}()
		dataset, err := datasets.New(datasets.Config{
			TaskName:       taskName,
			DataDir:        dataDir,
			CacheDir:       cacheDir,
			MaxSeqLength:   maxSeqLength,
			OverwriteCache: overwriteCache,
			Verbose:        true,
		}, tokenizer, limit, split)
		if err != nil {
			return err
		}
		fmt.Printf("cached %d features at %s\n", dataset.Len(), dataset.CachePath)
		return nil
	},
}

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Export a review sentiment source to the tsv format the amazon task reads",
	Description: `Export expects either a folder of {split}.jsonl files or a single split streamed on stdin.
Each json line must be of the format {"sentence": "review text", "label": 3} to be processed.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Usage:       "Folder with {split}.jsonl files. If omitted, one split is read from stdin.",
			Aliases:     []string{"i"},
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Folder to write the amazon.{split}.tsv files into",
			Aliases:     []string{"o"},
			Destination: &outputPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "splits",
			Usage:       "Comma separated split names to export",
			Destination: &splitList,
			Value:       "train,val,test",
		},
		&cli.StringFlag{
			Name:        "split",
			Usage:       "Split name for stdin input",
			Aliases:     []string{"s"},
			Destination: &splitName,
			Value:       "train",
		},
	},
	Action: func(_ *cli.Context) error {
		if inputPath != "" {
			source := tasks.NewJSONLReviewSource(inputPath, strings.Split(splitList, ","))
			return tasks.ExportReviews(source, outputPath)
		}
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("no input folder provided and nothing to process on stdin")
		}
		reviews, err := readReviews(os.Stdin)
		if err != nil {
			return err
		}
		return tasks.ExportReviews(&memoryReviewSource{split: splitName, reviews: reviews}, outputPath)
	},
}

var evalCommand = &cli.Command{
	Name:  "eval",
	Usage: "Run a classifier over a task split and print its metrics",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "task",
			Usage:       "Task name, one of: " + strings.Join(tasks.Names(), ", "),
			Aliases:     []string{"t"},
			Destination: &taskName,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Folder with the task's raw files",
			Destination: &dataDir,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Folder with the exported classifier and tokenizer files",
			Aliases:     []string{"m"},
			Destination: &modelPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "split",
			Usage:       "Split to evaluate: train, dev or test",
			Aliases:     []string{"s"},
			Destination: &splitName,
			Value:       "dev",
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Folder for the cache file, defaults to the data dir",
			Destination: &cacheDir,
		},
		&cli.IntFlag{
			Name:        "max-length",
			Usage:       "Maximum sequence length",
			Destination: &maxSeqLength,
			Value:       gluedata.DefaultMaxSeqLength,
		},
		&cli.IntFlag{
			Name:        "batch-size",
			Usage:       "Number of features to run in one forward pass",
			Aliases:     []string{"b"},
			Destination: &batchSize,
			Value:       32,
		},
		&cli.StringFlag{
			Name:        "runtime",
			Usage:       "Model runtime, GO or ORT",
			Destination: &modelRuntime,
			Value:       "GO",
		},
		&cli.StringFlag{
			Name:        "onnxruntimeSharedLibrary",
			Usage:       "Path to the onnxruntime.so library, used with the ORT runtime",
			Destination: &onnxLibraryPath,
		},
	},
	Action: func(_ *cli.Context) error {
		split, err := tasks.ParseSplit(splitName)
		if err != nil {
			return err
		}
		tokenizerRuntime := "GO"
		if modelRuntime == "ORT" {
			tokenizerRuntime = "RUST"
		}
		tokenizer, err := backends.LoadTokenizer(modelPath, tokenizerRuntime)
		if err != nil {
			return err
		}
		defer func() {
			if destroyErr := tokenizer.Destroy(); destroyErr != nil {
				log.Println(destroyErr)
			}
		}()
		model, err := backends.LoadModel(modelPath, "",
			backends.WithRuntime(modelRuntime),
			backends.WithOnnxLibraryPath(onnxLibraryPath))
		if err != nil {
			return err
		}
		defer func() {
			if destroyErr := model.Destroy(); destroyErr != nil {
				log.Println(destroyErr)
			}
		}()

		dataset, err := datasets.New(datasets.Config{
			TaskName:     taskName,
			DataDir:      dataDir,
			CacheDir:     cacheDir,
			MaxSeqLength: maxSeqLength,
			Verbose:      true,
		}, tokenizer, 0, split)
		if err != nil {
			return err
		}
		loader, err := datasets.NewLoader(dataset, batchSize)
		if err != nil {
			return err
		}
		metrics, err := inference.Evaluate(taskName, model, loader)
		if err != nil {
			return err
		}
		metricsBytes, err := jsoniter.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(metricsBytes))
		return nil
	},
}

type memoryReviewSource struct {
	split   string
	reviews []tasks.Review
}

func (s *memoryReviewSource) Splits() []string {
	return []string{s.split}
}

func (s *memoryReviewSource) Reviews(string) ([]tasks.Review, error) {
	return s.reviews, nil
}

func readReviews(reader io.Reader) ([]tasks.Review, error) {
	var reviews []tasks.Review
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var review tasks.Review
		if err := jsoniter.Unmarshal(line, &review); err != nil {
			return nil, fmt.Errorf("failed to parse json line: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func main() {
	app := &cli.App{
		Name:     "gluedata",
		Usage:    "Prepare nli and sentiment datasets and evaluate onnx classifiers on them",
		Commands: []*cli.Command{downloadCommand, cacheCommand, exportCommand, evalCommand},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
