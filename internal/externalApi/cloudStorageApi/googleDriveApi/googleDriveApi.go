package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"
	xlsxMimeType         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type GoogleDriveApi struct {
	srv *drive.Service
	cfg *config.Config
}

func New(ctx context.Context, cfg *config.Config) *GoogleDriveApi {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile))
	if err != nil {
		slog.Error("failed on drive.NewService", slog.String("err", err.Error()))
		panic(err)
	}
	return &GoogleDriveApi{srv: srv, cfg: cfg}
}

func mimeTypeOf(filename string) string {
	ext := filepath.Ext(filename)
	if ext == ".xlsx" {
		return xlsxMimeType
	}
	return mime.TypeByExtension(ext)
}

// UploadFile uploads the file and shares it with anyone who has the link.
func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	fileMeta := &drive.File{
		Name:     filename,
		MimeType: mimeTypeOf(filename),
	}

	// Media uploads in 16MB chunks and retries failed chunks
	uploadedFile, err := a.srv.Files.
		Create(fileMeta).
		Media(reader).
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading file to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	_, err = a.srv.Permissions.Create(uploadedFile.Id, perm).Context(ctx).Do()
	if err != nil {
		slog.Error("failed on creating permission to uploaded file in google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

func isExpired(createdTime string, cutoff time.Time) (bool, error) {
	created, err := time.Parse(time.RFC3339, createdTime)
	if err != nil {
		return false, err
	}
	return created.Before(cutoff), nil
}

// DeleteOldFiles removes uploaded reports older than GoogleDrive.FileTTL.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	cutoff := time.Now().Add(-a.cfg.GoogleDrive.FileTTL)
	totalFiles := 0
	deletedFiles := 0

	err := a.srv.Files.List().
		Fields("nextPageToken, files(id, createdTime)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			totalFiles += len(page.Files)
			for _, f := range page.Files {
				expired, err := isExpired(f.CreatedTime, cutoff)
				if err != nil {
					slog.Error(
						"failed parse time",
						slog.String("rqID", rqID),
						slog.String("op", op),
						slog.String("err", err.Error()),
						slog.String("fileID", f.Id),
						slog.String("createdTime", f.CreatedTime),
					)
					continue
				}
				if !expired {
					continue
				}

				if err = a.srv.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
					slog.Error(
						"failed delete file",
						slog.String("rqID", rqID),
						slog.String("op", op),
						slog.String("err", err.Error()),
						slog.String("fileID", f.Id),
					)
					continue
				}
				deletedFiles++
			}
			return nil
		})
	if err != nil {
		slog.Error("failed on getting files", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err = a.srv.Files.EmptyTrash().Context(ctx).Do(); err != nil {
		slog.Error("failed empty trash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Info("delete old files done", slog.String("rqID", rqID), slog.Int("deletedFiles", deletedFiles), slog.Int("remainingFiles", totalFiles-deletedFiles))

	return nil
}
