package protect

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PDFCPU encrypts files with pdfcpu using AES.
type PDFCPU struct {
	KeyLength int
}

func NewPDFCPU() *PDFCPU {
	// pdfcpu would otherwise create a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFCPU{KeyLength: 256}
}

func (e *PDFCPU) Encrypt(inFile, outFile string, c Credentials) error {
	conf := model.NewAESConfiguration(c.User, c.Owner, e.KeyLength)
	conf.Permissions = model.PermissionsNone | model.PermissionFlags(c.Permissions)
	return api.EncryptFile(inFile, outFile, conf)
}
