package deploy

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
)

// #region uploader
// Uploader copies a local artifact to remote storage and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, blobName string) (string, error)
}

// NopUploader keeps artifacts local. Registration records no URL.
type NopUploader struct{}

func (NopUploader) Upload(context.Context, string, string) (string, error) {
	return "", nil
}

// #endregion uploader

// #region blob-uploader
// BlobUploader writes artifacts to an Azure Storage container.
type BlobUploader struct {
	client    *azblob.Client
	container string
}

// NewCredential picks interactive browser auth when a tenant is pinned and
// the default credential chain otherwise.
func NewCredential(tenantID string) (azcore.TokenCredential, error) {
	if tenantID != "" {
		cred, err := azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			TenantID: tenantID,
		})
		if err != nil {
			return nil, fmt.Errorf("browser credential: %w", err)
		}
		return cred, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default credential: %w", err)
	}
	return cred, nil
}

// NewBlobUploader connects to the storage account at accountURL.
func NewBlobUploader(accountURL, container string, cred azcore.TokenCredential) (*BlobUploader, error) {
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("blob client: %w", err)
	}
	return &BlobUploader{client: client, container: container}, nil
}

// EnsureContainer creates the container if it does not exist yet.
func (u *BlobUploader) EnsureContainer(ctx context.Context) error {
	_, err := u.client.CreateContainer(ctx, u.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", u.container, err)
	}
	return nil
}

// Upload streams localPath to blobName inside the container.
func (u *BlobUploader) Upload(ctx context.Context, localPath, blobName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := u.client.UploadFile(ctx, u.container, blobName, f, nil); err != nil {
		return "", fmt.Errorf("upload %s: %w", blobName, err)
	}
	return runtime.JoinPaths(u.client.URL(), u.container, blobName), nil
}

// #endregion blob-uploader

// #region from-config
// UploaderFromConfig returns a BlobUploader with its container ensured when
// a storage account is configured, and NopUploader otherwise.
func UploaderFromConfig(ctx context.Context, azure config.AzureConfig) (Uploader, error) {
	if !azure.UploadEnabled() {
		return NopUploader{}, nil
	}
	cred, err := NewCredential(azure.TenantID)
	if err != nil {
		return nil, err
	}
	u, err := NewBlobUploader(azure.StorageAccountURL, azure.Container, cred)
	if err != nil {
		return nil, err
	}
	if err := u.EnsureContainer(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// #endregion from-config
