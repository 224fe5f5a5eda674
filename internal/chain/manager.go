package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/openwave/ows/internal/config"
	"github.com/openwave/ows/internal/logger"
)

// Manager 单链管理器。每个维护者一个托管合约实例。
type Manager struct {
	mu            sync.RWMutex
	contracts     map[string]*Contract // 合约映射: 维护者 -> Contract
	client        *ethclient.Client    // 链客户端
	privateKey    *ecdsa.PrivateKey    // 平台签名私钥
	config        config.ChainConfig   // 存储链配置
	confirmations int                  // 交易确认区块数
}

// NewManager 创建单链管理器
func NewManager(cfg config.ChainConfig) (*Manager, error) {
	manager := &Manager{
		contracts:     make(map[string]*Contract),
		config:        cfg,
		confirmations: cfg.Confirmations,
	}

	// 初始化客户端
	if err := manager.initClient(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	// 解析私钥
	if cfg.PrivateKey != "" {
		privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		manager.privateKey = privateKey
	}

	// 初始化所有启用的合约
	if err := manager.initContracts(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize contracts: %w", err)
	}

	return manager, nil
}

// initClient 初始化客户端
func (m *Manager) initClient(cfg config.ChainConfig) error {
	logger.Info("Initializing chain client (type: %s, id: %d)", cfg.ChainType, cfg.ChainId)

	rpcUrl := cfg.RpcUrl
	if rpcUrl == "" {
		return fmt.Errorf("no RPC URL configured")
	}

	client, err := ethclient.Dial(rpcUrl)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	// 测试连接
	if _, err := client.BlockNumber(context.TODO()); err != nil {
		client.Close()
		return fmt.Errorf("client connection test failed (%s): %w", cfg.ChainType, err)
	}

	m.client = client
	logger.Info("Successfully initialized client")

	return nil
}

// initContracts 初始化所有合约
func (m *Manager) initContracts(cfg config.ChainConfig) error {
	var initErrors []error

	// 遍历所有合约
	for contractName, contractCfg := range cfg.Contracts {
		if !contractCfg.Enabled {
			logger.Info("Skipping disabled contract: %s", contractName)
			continue
		}

		logger.Info("Initializing escrow contract: %s (address: %s)", contractName, contractCfg.Address)

		contract, err := NewContract(contractName, contractCfg, cfg)
		if err != nil {
			logger.Error("Failed to create contract %s: %v", contractName, err)
			initErrors = append(initErrors, fmt.Errorf("failed to create contract %s: %w", contractName, err))
			continue
		}

		key := contractCfg.Maintainer
		if key == "" {
			key = contractName
		}
		m.contracts[key] = contract
		logger.Info("Successfully initialized contract: %s", contractName)
	}

	if len(initErrors) > 0 {
		return initErrors[0]
	}

	logger.Info("Successfully initialized %d contracts", len(m.contracts))
	return nil
}

// GetClient 获取客户端
func (m *Manager) GetClient() *ethclient.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// GetContract 获取指定维护者的托管合约
func (m *Manager) GetContract(maintainer string) (*Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contract, exists := m.contracts[maintainer]
	if !exists {
		return nil, fmt.Errorf("escrow contract for %s not found", maintainer)
	}

	return contract, nil
}

// GetContracts 获取所有合约
func (m *Manager) GetContracts() map[string]*Contract {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 返回副本以避免并发修改
	contracts := make(map[string]*Contract)
	for name, contract := range m.contracts {
		contracts[name] = contract
	}

	return contracts
}

// GetConfig 获取链配置
func (m *Manager) GetConfig() config.ChainConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetChainId 获取链ID
func (m *Manager) GetChainId() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ChainId
}

// GetAccountAddress 获取平台账户地址
func (m *Manager) GetAccountAddress() common.Address {
	return crypto.PubkeyToAddress(m.privateKey.PublicKey)
}

// GetAuth 获取交易授权
func (m *Manager) GetAuth() (*bind.TransactOpts, error) {
	if m.privateKey == nil {
		return nil, fmt.Errorf("no private key configured")
	}
	return bind.NewKeyedTransactorWithChainID(m.privateKey, big.NewInt(m.config.ChainId))
}

// GetLatestBlock 获取最新区块号
func (m *Manager) GetLatestBlock(ctx context.Context) (uint64, error) {
	return m.client.BlockNumber(ctx)
}

// WaitForReceipt 等待交易回执并确认。交易提交后必须等到回执确认才视为最终。
func (m *Manager) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := m.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			confirmed, cerr := m.isConfirmed(ctx, receipt)
			if cerr != nil {
				return nil, cerr
			}
			if confirmed {
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// isConfirmed 检查回执是否达到确认区块数
func (m *Manager) isConfirmed(ctx context.Context, receipt *types.Receipt) (bool, error) {
	latest, err := m.client.BlockNumber(ctx)
	if err != nil {
		return false, err
	}
	return latest >= receipt.BlockNumber.Uint64()+uint64(m.confirmations), nil
}

// GetHealthStatus 获取健康状态
func (m *Manager) GetHealthStatus() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := map[string]interface{}{
		"chain_type":    m.config.ChainType,
		"chain_id":      m.config.ChainId,
		"client_status": "connected",
		"contracts":     make(map[string]interface{}),
	}

	// 检查客户端连接状态
	if m.client != nil {
		if _, err := m.client.BlockNumber(context.TODO()); err != nil {
			health["client_status"] = "disconnected"
		}
	} else {
		health["client_status"] = "not_initialized"
	}

	// 检查每个合约的状态
	for maintainer, contract := range m.contracts {
		contractHealth := map[string]interface{}{
			"address":   contract.GetAddress().Hex(),
			"chain_id":  contract.GetChainId(),
			"block_num": contract.GetBlockNum(),
		}
		health["contracts"].(map[string]interface{})[maintainer] = contractHealth
	}

	return health
}

// Close 关闭管理器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Close()
	}

	logger.Info("Chain manager closed")
	return nil
}
