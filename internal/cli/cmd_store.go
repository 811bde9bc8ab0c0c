package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mighty840/walletvault/internal/config"
	"github.com/mighty840/walletvault/internal/crypto"
	"github.com/mighty840/walletvault/internal/log"
	"github.com/mighty840/walletvault/internal/storage"
)

type storeFlags struct {
	configPath string
	backend    string
	path       string
	keyHex     string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to the walletvault config file")
	cmd.Flags().StringVar(&f.backend, "backend", "", "Storage backend (overrides config)")
	cmd.Flags().StringVar(&f.path, "path", "", "Storage path (overrides config)")
	cmd.Flags().StringVar(&f.keyHex, "key-hex", "", "Hex-encoded 32-byte encryption key for protected stores")
}

// openStorage resolves config plus flag overrides into an opened encrypting
// storage, before any schema gating. The returned cleanup must run on every
// exit path.
func (f *storeFlags) openStorage(ctx context.Context) (*storage.Storage, config.Config, func(), error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	if f.backend != "" {
		cfg.Storage.Backend = f.backend
	}
	if f.path != "" {
		cfg.Storage.Path = f.path
	}

	var key []byte
	if f.keyHex != "" {
		key, err = hex.DecodeString(f.keyHex)
		if err != nil {
			return nil, config.Config{}, nil, fmt.Errorf("decode --key-hex: %w", err)
		}
		if len(key) != crypto.KeySize {
			return nil, config.Config{}, nil, fmt.Errorf("--key-hex must decode to %d bytes, got %d", crypto.KeySize, len(key))
		}
	}

	adapter, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	store, err := storage.NewStorage(ctx, adapter, key)
	if err != nil {
		_ = adapter.Close()
		return nil, config.Config{}, nil, err
	}

	return store, cfg, func() { _ = store.Close() }, nil
}

// openManager opens a store through the schema-version gate.
func (f *storeFlags) openManager(ctx context.Context) (*storage.Manager, func(), error) {
	store, cfg, cleanup, err := f.openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	logger, err := log.New(log.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	manager, err := storage.NewManager(ctx, store, storage.WithLogger(logger))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return manager, cleanup, nil
}

func newBackendsCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List compiled-in storage backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range storage.RegisteredBackends() {
				if _, err := fmt.Fprintln(out, kind); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAccountsCommand(out io.Writer) *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts registered in a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cleanup, err := flags.openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			accounts, err := manager.Accounts(cmd.Context())
			if err != nil {
				return err
			}

			for _, acc := range accounts {
				if _, err := fmt.Fprintf(out, "%d\t%s\n", acc.Index, acc.Alias); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newSchemaCommand(out io.Writer) *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the persisted and supported schema versions of a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Read below the version gate so a store this build refuses
			// to open can still be inspected.
			store, _, cleanup, err := flags.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			persisted := "none"
			version, err := store.PersistedSchemaVersion(cmd.Context())
			switch {
			case errors.Is(err, storage.ErrRecordNotFound):
				// Never initialized.
			case err != nil:
				return err
			default:
				persisted = strconv.Itoa(int(version))
			}

			_, err = fmt.Fprintf(out, "backend=%s persisted_version=%s supported_version=%d encrypted=%t\n",
				store.ID(), persisted, storage.SchemaVersion, store.IsEncrypted())
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
