package archiver

import (
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/openpgp"
)

// Encrypt takes a writer to encrypt data onto and a reader containing the
// ASCII-armored public key to encrypt with and returns a WriteCloser to
// write onto and close. It assumes there is only one OpenPGP entity
// involved.
func Encrypt(plainWriter io.Writer, keyReader io.Reader) (io.WriteCloser, error) {

	var (
		entityList openpgp.EntityList
		err        error
	)

	if entityList, err = openpgp.ReadArmoredKeyRing(keyReader); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot read armored key ring")
	}

	return openpgp.Encrypt(plainWriter, entityList, nil, nil, nil)
}

// Decrypt takes a reader with encrypted data, a reader with the private
// key, and a reader with the passphrase (or an empty string if the key is
// unprotected) and returns a reader that decrypts the data. It assumes
// there is only one OpenPGP entity involved.
func Decrypt(encReader io.Reader, keyReader io.Reader, passReader io.Reader) (io.Reader, error) {

	var (
		entityList openpgp.EntityList
		entity     *openpgp.Entity
		passphrase []byte
		msgDetails *openpgp.MessageDetails
		err        error
	)

	if entityList, err = openpgp.ReadArmoredKeyRing(keyReader); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot read armored key ring")
	}

	entity = entityList[0]

	if passphrase, err = io.ReadAll(passReader); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot read key passphrase")
	}

	passphrase = bytes.TrimSpace(passphrase)

	if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
		if err = entity.PrivateKey.Decrypt(passphrase); err != nil {
			return nil, wrap(KindIOFailure, err, "cannot decrypt private key")
		}
	}

	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
			if err = subkey.PrivateKey.Decrypt(passphrase); err != nil {
				return nil, wrap(KindIOFailure, err, "cannot decrypt private subkey")
			}
		}
	}

	if msgDetails, err = openpgp.ReadMessage(encReader, entityList, nil, nil); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot read encrypted message")
	}

	return msgDetails.UnverifiedBody, nil
}

// EncryptFile encrypts the file at srcPath into dstPath using the
// ASCII-armored public key at keyPath. The bundle checksum always refers
// to the plaintext bundle, so encryption is applied only after the final
// hash has been computed.
func EncryptFile(srcPath, dstPath, keyPath string) error {

	var (
		in        *os.File
		out       *os.File
		keyFile   *os.File
		encWriter io.WriteCloser
		err       error
	)

	if keyFile, err = os.Open(keyPath); err != nil {
		return wrap(KindIOFailure, err, "cannot open key file '%s'", keyPath)
	}

	defer keyFile.Close()

	if in, err = os.Open(srcPath); err != nil {
		return wrap(KindIOFailure, err, "cannot open '%s'", srcPath)
	}

	defer in.Close()

	if out, err = os.Create(dstPath); err != nil {
		return wrap(KindIOFailure, err, "cannot create '%s'", dstPath)
	}

	defer out.Close()

	if encWriter, err = Encrypt(out, keyFile); err != nil {
		return err
	}

	if _, err = io.Copy(encWriter, in); err != nil {
		return wrap(KindIOFailure, err, "error encrypting '%s'", srcPath)
	}

	if err = encWriter.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot finish encrypting '%s'", dstPath)
	}

	return out.Close()
}

// passphraseReader resolves the private key passphrase from the
// DICOM_ARCHIVE_KEYPASS environment variable or the given file, in that
// order of preference. An empty reader is returned for unprotected keys.
func passphraseReader(keyPassPath string) (io.Reader, error) {

	if pass := os.Getenv("DICOM_ARCHIVE_KEYPASS"); pass != "" {
		return strings.NewReader(pass), nil
	}

	if keyPassPath == "" {
		return strings.NewReader(""), nil
	}

	passFile, err := os.Open(keyPassPath)
	if err != nil {
		return nil, wrap(KindIOFailure, err, "cannot open passphrase file '%s'", keyPassPath)
	}

	return passFile, nil
}
