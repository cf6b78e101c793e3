package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/embedder"
	"github.com/tkaraca/facegate/internal/names"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [photo files...]",
	Short: "Enroll student face samples",
	Long: `Enroll face samples from photos. Each photo must contain exactly one
face; the embedder service extracts the embedding and it is stored as an
enrollment sample.

Add samples to an existing student:
  facegate enroll --school sch-1 --student <id> photo1.jpg photo2.jpg

Create a new student and enroll in one step:
  facegate enroll --school sch-1 --class 5-A --name "Ada Lovelace" photo1.jpg

Bulk import, one subdirectory per student (named First_Last):
  facegate enroll --school sch-1 --class 5-A --dir ./photos/5-A`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("school", "", "School ID (required)")
	enrollCmd.Flags().String("class", "", "Class ID")
	enrollCmd.Flags().String("student", "", "Existing student ID to add samples to")
	enrollCmd.Flags().String("name", "", "Full name for a new student")
	enrollCmd.Flags().String("dir", "", "Bulk import directory, one subdirectory per student")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	schoolID := mustGetString(cmd, "school")
	if schoolID == "" {
		return errors.New("--school is required")
	}
	if cfg.Embedder.URL == "" {
		return errors.New("EMBEDDER_URL environment variable is required")
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = storage.close() }()

	detector := embedder.New(cfg.Embedder)
	ctx := context.Background()

	if dir := mustGetString(cmd, "dir"); dir != "" {
		return bulkEnroll(ctx, storage, detector, schoolID, mustGetString(cmd, "class"), dir)
	}

	if len(args) == 0 {
		return errors.New("no photo files given")
	}

	studentID := mustGetString(cmd, "student")
	if studentID != "" {
		student, err := storage.students.GetStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if student == nil {
			return fmt.Errorf("student %s not found", studentID)
		}
	} else {
		fullName := mustGetString(cmd, "name")
		if fullName == "" {
			return errors.New("either --student or --name is required")
		}
		studentID, err = createStudent(ctx, storage, schoolID, mustGetString(cmd, "class"), fullName)
		if err != nil {
			return err
		}
		fmt.Printf("Created student %s (%s)\n", fullName, studentID)
	}

	enrolled := 0
	for _, path := range args {
		if err := enrollPhoto(ctx, storage, detector, studentID, path); err != nil {
			fmt.Printf("Skipping %s: %v\n", path, err)
			continue
		}
		enrolled++
	}

	fmt.Printf("Enrolled %d of %d photos for student %s\n", enrolled, len(args), studentID)
	return nil
}

// createStudent registers a new student from a full name.
func createStudent(ctx context.Context, storage *storageBackends, schoolID, classID, fullName string) (string, error) {
	first, last := names.SplitFull(fullName)
	if first == "" {
		return "", fmt.Errorf("cannot parse student name %q", fullName)
	}

	if classID != "" {
		if err := storage.students.EnsureClass(ctx, classID, schoolID, classID); err != nil {
			return "", fmt.Errorf("ensuring class %s: %w", classID, err)
		}
	}

	student := database.Student{
		StudentID: uuid.NewString(),
		SchoolID:  schoolID,
		ClassID:   classID,
		FirstName: first,
		LastName:  last,
		IsActive:  true,
	}
	if err := storage.students.CreateStudent(ctx, student); err != nil {
		return "", fmt.Errorf("creating student %q: %w", fullName, err)
	}
	return student.StudentID, nil
}

// enrollPhoto extracts one face embedding from a photo and stores it.
func enrollPhoto(ctx context.Context, storage *storageBackends, detector *embedder.Client, studentID, path string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	faces, err := detector.DetectAndEmbed(ctx, frame)
	if err != nil {
		return err
	}
	if len(faces) == 0 {
		return errors.New("no face detected")
	}
	if len(faces) > 1 {
		return fmt.Errorf("%d faces detected, enrollment photos must contain one", len(faces))
	}

	return storage.embeddings.AppendEmbedding(ctx, studentID, faces[0].Embedding, database.SourceEnrollment)
}

// bulkEnroll imports a directory tree where every subdirectory is one
// student (named First_Last) holding that student's enrollment photos.
func bulkEnroll(ctx context.Context, storage *storageBackends, detector *embedder.Client, schoolID, classID, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading import directory: %w", err)
	}

	type studentDir struct {
		name   string
		photos []string
	}

	var students []studentDir
	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		photos, err := listPhotos(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if len(photos) == 0 {
			fmt.Printf("Skipping %s: no photos\n", entry.Name())
			continue
		}
		students = append(students, studentDir{name: entry.Name(), photos: photos})
		total += len(photos)
	}

	if total == 0 {
		return errors.New("no enrollment photos found")
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	created, enrolled, failed := 0, 0, 0
	for _, sd := range students {
		studentID, err := createStudent(ctx, storage, schoolID, classID, sd.name)
		if err != nil {
			return err
		}
		created++

		for _, photo := range sd.photos {
			if err := enrollPhoto(ctx, storage, detector, studentID, photo); err != nil {
				fmt.Printf("\nSkipping %s: %v\n", photo, err)
				failed++
			} else {
				enrolled++
			}
			_ = bar.Add(1)
		}
	}

	fmt.Printf("\nCreated %d students, enrolled %d photos (%d failed)\n", created, enrolled, failed)
	return nil
}

// listPhotos returns the image files directly inside a directory.
func listPhotos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			photos = append(photos, filepath.Join(dir, entry.Name()))
		}
	}
	return photos, nil
}
