package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/openwave/ows/internal/chain"
	"github.com/openwave/ows/internal/logger"
	"github.com/openwave/ows/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventMonitor 托管合约事件监控器。
// 周期性拉取托管合约日志并落库，(tx_hash, log_index) 去重，重启后从断点续扫。
type EventMonitor struct {
	chainManager  *chain.Manager
	db            *gorm.DB
	interval      time.Duration
	startBlockNum int64
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex // 保护 startBlockNum 的并发访问
}

// 单次FilterLogs扫描的区块跨度上限，避免触发节点API限制
const batchSize = int64(500)

// NewEventMonitor 创建事件监控器
func NewEventMonitor(chainManager *chain.Manager, db *gorm.DB, interval time.Duration) *EventMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventMonitor{
		chainManager: chainManager,
		db:           db,
		interval:     interval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	logger.Info("Starting escrow event monitor")

	contracts := m.chainManager.GetContracts()
	if len(contracts) == 0 {
		return fmt.Errorf("no escrow contracts available for monitoring")
	}

	currentBlock, err := m.chainManager.GetLatestBlock(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain: %w", err)
	}
	logger.Info("Connected to blockchain, current block: %d", currentBlock)

	startBlock := m.resolveStartBlock(contracts)
	m.mu.Lock()
	m.startBlockNum = startBlock
	m.mu.Unlock()
	logger.Info("Starting monitor from block %d", startBlock)

	go m.loop()

	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	logger.Info("Stopping escrow event monitor")
	m.cancel()
}

// loop 监控循环
func (m *EventMonitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Event monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.chainManager.GetLatestBlock(m.ctx)
			if err != nil {
				logger.Error("Failed to get current block number: %v", err)
				continue
			}

			contracts := m.chainManager.GetContracts()
			if err := m.scanBlocks(contracts, m.getStartBlock(), int64(currentBlock)); err != nil {
				logger.Error("Error scanning blocks: %v", err)
			}
		}
	}
}

// scanBlocks 分批扫描区块区间
func (m *EventMonitor) scanBlocks(contracts map[string]*chain.Contract, fromBlock, toBlock int64) error {
	if fromBlock > toBlock {
		return nil
	}

	for currentFrom := fromBlock; currentFrom <= toBlock; currentFrom += batchSize {
		currentTo := currentFrom + batchSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		if err := m.scanBatch(contracts, currentFrom, currentTo); err != nil {
			return fmt.Errorf("error scanning blocks %d-%d: %w", currentFrom, currentTo, err)
		}

		m.setStartBlock(currentTo + 1)

		// 限速，避免触发节点API限制
		time.Sleep(time.Millisecond * 500)
	}

	return nil
}

// scanBatch 拉取一批区块的日志，按合约分组并发处理
func (m *EventMonitor) scanBatch(contracts map[string]*chain.Contract, fromBlock, toBlock int64) error {
	addresses := make([]common.Address, 0, len(contracts))
	contractMap := make(map[common.Address]*chain.Contract)
	for _, contract := range contracts {
		addresses = append(addresses, contract.GetAddress())
		contractMap[contract.GetAddress()] = contract
	}
	if len(addresses) == 0 {
		return nil
	}

	logs, err := m.chainManager.GetClient().FilterLogs(m.ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: addresses,
	})
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs for blocks %d-%d", len(logs), fromBlock, toBlock)

	logsByContract := make(map[common.Address][]types.Log)
	for _, log := range logs {
		logsByContract[log.Address] = append(logsByContract[log.Address], log)
	}

	pool, err := ants.NewPool(len(logsByContract))
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for address, contractLogs := range logsByContract {
		contract := contractMap[address]
		if contract == nil {
			logger.Warn("Unknown contract address: %s", address.Hex())
			continue
		}

		wg.Add(1)
		logs := contractLogs
		err := pool.Submit(func() {
			defer wg.Done()
			m.processContractLogs(contract, logs)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit task to pool: %v", err)
		}
	}
	wg.Wait()

	return nil
}

// processContractLogs 解析并落库一个合约的日志
func (m *EventMonitor) processContractLogs(contract *chain.Contract, logs []types.Log) {
	for _, log := range logs {
		eventData, err := contract.ParseEvent(log)
		if err != nil {
			logger.Error("Error parsing event for contract %s: %v", contract.GetName(), err)
			continue
		}

		eventDataJSON, err := json.Marshal(eventData)
		if err != nil {
			logger.Error("Failed to marshal event data: %v", err)
			continue
		}

		event := &model.EscrowEvent{
			Contract:  contract.GetName(),
			EventType: eventData["eventName"].(string),
			TxHash:    log.TxHash.Hex(),
			BlockNum:  int64(log.BlockNumber),
			LogIndex:  int64(log.Index),
			Data:      string(eventDataJSON),
		}

		// 重复扫描到的日志静默跳过
		err = m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(event).Error
		if err != nil {
			logger.Error("Failed to store event %s at block %d: %v",
				event.EventType, event.BlockNum, err)
			continue
		}

		logger.Debug("Stored %s event for contract %s at block %d",
			event.EventType, contract.GetName(), log.BlockNumber)
	}
}

// resolveStartBlock 断点续扫：取已落库的最大区块号，否则取配置中最早的合约部署区块
func (m *EventMonitor) resolveStartBlock(contracts map[string]*chain.Contract) int64 {
	var maxProcessed int64
	err := m.db.Model(&model.EscrowEvent{}).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&maxProcessed).Error
	if err == nil && maxProcessed > 0 {
		return maxProcessed + 1
	}

	minDeployBlock := int64(0)
	first := true
	for _, contract := range contracts {
		if first || contract.GetBlockNum() < minDeployBlock {
			minDeployBlock = contract.GetBlockNum()
			first = false
		}
	}
	return minDeployBlock
}

func (m *EventMonitor) getStartBlock() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startBlockNum
}

func (m *EventMonitor) setStartBlock(block int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startBlockNum = block
}
